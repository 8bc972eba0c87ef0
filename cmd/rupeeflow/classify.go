package main

import (
	"fmt"
	"log/slog"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"rupeeflow/internal/cli"
	"rupeeflow/internal/pipeline"
)

func classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify",
		Short: "Re-run classification over pending transactions",
		Long: `Walk every pending transaction and try to resolve it again, using the current
merchant map and the remote classifier. Transactions that still cannot be
resolved confidently are left pending.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					slog.Error("failed to close storage", "error", err)
				}
			}()

			pipe, err := buildPipeline(store)
			if err != nil {
				return err
			}

			pending, err := store.GetPendingTransactions(ctx)
			if err != nil {
				return fmt.Errorf("failed to get pending transactions: %w", err)
			}
			if len(pending) == 0 {
				fmt.Println(cli.FormatInfo("No pending transactions."))
				return nil
			}

			bar := progressbar.Default(int64(len(pending)), "classifying")

			finalized := 0
			for i := range pending {
				outcome, err := pipe.ResolvePending(ctx, &pending[i])
				if err != nil {
					return fmt.Errorf("failed to resolve transaction %d: %w", pending[i].ID, err)
				}
				if outcome == pipeline.OutcomeFinalized {
					finalized++
				}
				_ = bar.Add(1)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Resolved %d of %d pending transactions", finalized, len(pending))))
			return nil
		},
	}
}
