// Package classify implements the remote classifier clients used to
// auto-categorize payment notifications.
package classify

import (
	"context"

	"rupeeflow/internal/model"
)

// Client defines the interface for remote classifier providers.
type Client interface {
	Classify(ctx context.Context, prompt string, categories []string) (model.Suggestion, error)
}
