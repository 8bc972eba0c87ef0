package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"rupeeflow/internal/cli"
)

func summaryCmd() *cobra.Command {
	var (
		year  int
		month int
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show monthly expense and income totals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			now := time.Now()
			if year == 0 {
				year = now.Year()
			}
			if month == 0 {
				month = int(now.Month())
			}
			if month < 1 || month > 12 {
				return fmt.Errorf("month must be between 1 and 12")
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					slog.Error("failed to close storage", "error", err)
				}
			}()

			start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
			end := start.AddDate(0, 1, 0)

			summary, err := store.GetMonthlySummary(ctx, start, end)
			if err != nil {
				return fmt.Errorf("failed to get summary: %w", err)
			}

			fmt.Println(cli.FormatTitle(start.Format("January 2006")))
			fmt.Printf("  Expenses: %s\n", cli.ErrorStyle.Render(fmt.Sprintf("₹ %.2f", summary.TotalExpenses)))
			fmt.Printf("  Income:   %s\n", cli.SuccessStyle.Render(fmt.Sprintf("₹ %.2f", summary.TotalIncome)))
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "year (defaults to current)")
	cmd.Flags().IntVar(&month, "month", 0, "month 1-12 (defaults to current)")

	return cmd
}
