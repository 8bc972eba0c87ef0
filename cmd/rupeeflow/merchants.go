package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"rupeeflow/internal/cli"
	"rupeeflow/internal/model"
)

func merchantsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merchants",
		Short: "Manage the merchant map",
		Long:  `View, edit, and delete remembered receiver-to-category mappings.`,
	}

	cmd.AddCommand(merchantsListCmd())
	cmd.AddCommand(merchantsSetCmd())
	cmd.AddCommand(merchantsDeleteCmd())

	return cmd
}

func merchantsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all merchant mappings",
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

			merchants, err := store.GetAllMerchants(ctx)
			if err != nil {
				return fmt.Errorf("failed to get merchants: %w", err)
			}
			if len(merchants) == 0 {
				fmt.Println(cli.FormatInfo("No merchants remembered yet."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				cli.TableHeaderStyle.Render("Receiver"),
				cli.TableHeaderStyle.Render("Category"),
				cli.TableHeaderStyle.Render("Description"),
				cli.TableHeaderStyle.Render("Type"),
				cli.TableHeaderStyle.Render("Always ask"))
			for _, m := range merchants {
				ask := ""
				if m.AlwaysAsk {
					ask = "yes"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					m.Receiver, m.Category, m.Description, m.Type, ask)
			}
			return nil
		},
	}
}

func merchantsSetCmd() *cobra.Command {
	var (
		description string
		txnType     string
		alwaysAsk   bool
	)

	cmd := &cobra.Command{
		Use:   "set <receiver> <category>",
		Short: "Add or update a merchant mapping",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			chosenType := model.TransactionType(txnType)
			if !chosenType.Valid() {
				return fmt.Errorf("type must be %s or %s", model.TypeExpense, model.TypeIncome)
			}
			if description == "" {
				description = args[0]
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

			// Make sure the category exists so the next payment finalizes.
			if _, err := store.CreateCategory(ctx, args[1], chosenType); err != nil {
				return fmt.Errorf("failed to ensure category: %w", err)
			}

			if err := store.SaveMerchant(ctx, &model.Merchant{
				Receiver:    args[0],
				Category:    args[1],
				Description: description,
				Type:        chosenType,
				AlwaysAsk:   alwaysAsk,
			}); err != nil {
				return fmt.Errorf("failed to save merchant: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Mapped %q to %q", args[0], args[1])))
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "merchant description (defaults to receiver)")
	cmd.Flags().StringVar(&txnType, "type", string(model.TypeExpense), "transaction type (Expense or Income)")
	cmd.Flags().BoolVar(&alwaysAsk, "always-ask", false, "ask for a category on every payment to this receiver")

	return cmd
}

func merchantsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <receiver>",
		Short: "Delete a merchant mapping",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			if err := store.DeleteMerchant(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to delete merchant: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted merchant %q", args[0])))
			return nil
		},
	}
}
