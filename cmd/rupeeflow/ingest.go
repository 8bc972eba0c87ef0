package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"rupeeflow/internal/cli"
	"rupeeflow/internal/pipeline"
)

func ingestCmd() *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "ingest <notification text>",
		Short: "Feed one notification through the pipeline",
		Long: `Run a single notification through the classification pipeline, exactly as if
the companion app had captured and forwarded it. Useful for testing templates
and classifier behavior from the terminal.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			text := strings.Join(args, " ")

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

			outcome, err := pipe.HandleNotification(ctx, title, text)
			if err != nil {
				return fmt.Errorf("failed to process notification: %w", err)
			}

			switch outcome {
			case pipeline.OutcomeFinalized:
				fmt.Println(cli.FormatSuccess("transaction recorded"))
			case pipeline.OutcomeDeferred:
				fmt.Println(cli.FormatWarning("transaction deferred for categorization"))
			default:
				fmt.Println(cli.FormatInfo(string(outcome)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "notification title")

	return cmd
}
