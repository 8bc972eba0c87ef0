package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"rupeeflow/internal/classify"
	"rupeeflow/internal/config"
	"rupeeflow/internal/notify"
	"rupeeflow/internal/pipeline"
	"rupeeflow/internal/service"
	"rupeeflow/internal/storage"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/rupeeflow/rupeeflow.db"
	}

	// Expand tilde and environment variables
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// buildPipeline wires storage, classifier and notifier into a pipeline from
// the active configuration.
func buildPipeline(store service.Storage) (*pipeline.Pipeline, error) {
	logger := slog.Default()

	classifier, err := classify.NewClassifier(classify.Config{
		Provider:   viper.GetString("classifier.provider"),
		GatewayURL: viper.GetString("classifier.gateway_url"),
		APIKey:     viper.GetString("classifier.api_key"),
		Model:      viper.GetString("classifier.model"),
		MaxRetries: viper.GetUint("classifier.max_retries"),
		RetryDelay: viper.GetDuration("classifier.retry_delay"),
		Timeout:    viper.GetDuration("classifier.timeout"),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize classifier: %w", err)
	}

	var notifier service.Notifier
	if gatewayURL := viper.GetString("notifier.gateway_url"); gatewayURL != "" {
		notifier, err = notify.NewPushNotifier(gatewayURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize notifier: %w", err)
		}
	} else {
		notifier = notify.NewLogNotifier(logger)
	}

	return pipeline.New(store, classifier, notifier, logger, pipeline.Config{
		DeepLinkBase:   viper.GetString("deeplink.base"),
		DebounceWindow: viper.GetDuration("pipeline.debounce"),
	}), nil
}
