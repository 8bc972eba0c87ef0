package notify

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"rupeeflow/internal/service"
)

// LogNotifier records notifications to the log. It stands in when no push
// gateway is configured so the pipeline's defer path still completes.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// Schedule logs the notification instead of delivering it.
func (n *LogNotifier) Schedule(_ context.Context, notification service.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}

	n.logger.Info("notification scheduled",
		"id", notification.ID,
		"title", notification.Title,
		"body", notification.Body,
		"deep_link", notification.DeepLink)
	return nil
}
