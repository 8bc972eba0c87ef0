package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"rupeeflow/internal/cli"
	"rupeeflow/internal/model"
)

func pendingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "Manage pending transactions",
		Long:  `List transactions awaiting categorization and finalize them from the terminal.`,
	}

	cmd.AddCommand(pendingListCmd())
	cmd.AddCommand(pendingCategoriseCmd())

	return cmd
}

func pendingListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pending transactions",
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

			pending, err := store.GetPendingTransactions(ctx)
			if err != nil {
				return fmt.Errorf("failed to get pending transactions: %w", err)
			}
			if len(pending) == 0 {
				fmt.Println(cli.FormatInfo("No pending transactions."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				cli.TableHeaderStyle.Render("ID"),
				cli.TableHeaderStyle.Render("Date"),
				cli.TableHeaderStyle.Render("Receiver"),
				cli.TableHeaderStyle.Render("Amount"))
			for _, txn := range pending {
				fmt.Fprintf(w, "%d\t%s\t%s\t₹ %.2f\n",
					txn.ID, txn.Date.Format("2006-01-02"), txn.Description, txn.Amount)
			}
			return nil
		},
	}
}

func pendingCategoriseCmd() *cobra.Command {
	var (
		description string
		txnType     string
		alwaysAsk   bool
	)

	cmd := &cobra.Command{
		Use:   "categorise <id> <category>",
		Short: "Categorize a pending transaction",
		Long: `Finalize a pending transaction with the given category. The receiver is
remembered in the merchant map so future payments resolve automatically.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid transaction id %q", args[0])
			}
			category := strings.TrimSpace(args[1])
			if category == "" {
				return fmt.Errorf("category must not be empty")
			}

			chosenType := model.TransactionType(txnType)
			if txnType != "" && !chosenType.Valid() {
				return fmt.Errorf("type must be %s or %s", model.TypeExpense, model.TypeIncome)
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

			pipe, err := buildPipeline(store)
			if err != nil {
				return err
			}

			txn, err := store.GetTransactionByID(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to get transaction: %w", err)
			}

			// Deferred rows store the receiver as the description.
			err = pipe.FinalizePending(ctx, id, txn.Description, category, description, chosenType, alwaysAsk)
			if err != nil {
				return fmt.Errorf("failed to categorize transaction: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Categorized transaction %d as %q", id, category)))
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "merchant description (defaults to receiver)")
	cmd.Flags().StringVar(&txnType, "type", "", "transaction type (Expense or Income, defaults to Expense)")
	cmd.Flags().BoolVar(&alwaysAsk, "always-ask", false, "keep asking for this receiver on future payments")

	return cmd
}
