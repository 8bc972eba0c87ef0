package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"rupeeflow/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the notification ingestion API server",
		Long: `Start the HTTP server that receives captured payment notifications from the
companion app, runs them through the classification pipeline, and serves the
ledger, category and merchant endpoints.`,
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

			srv := server.New(pipe, slog.Default(), server.Config{
				Addr:         viper.GetString("server.addr"),
				AllowOrigins: viper.GetStringSlice("server.allow_origins"),
			})

			return srv.Run(ctx)
		},
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))

	return cmd
}
