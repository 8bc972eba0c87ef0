package classify

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go"

	"rupeeflow/internal/common"
	"rupeeflow/internal/model"
)

// Config holds configuration for the classifier.
type Config struct {
	Provider   string
	GatewayURL string
	APIKey     string
	Model      string
	MaxRetries uint
	RetryDelay time.Duration
	Timeout    time.Duration
}

// Classifier fronts a provider Client with retries and prompt composition.
type Classifier struct {
	client     Client
	logger     *slog.Logger
	maxRetries uint
	retryDelay time.Duration
}

// NewClassifier creates a classifier for the configured provider.
func NewClassifier(cfg Config, logger *slog.Logger) (*Classifier, error) {
	var client Client
	var err error

	switch strings.ToLower(cfg.Provider) {
	case "", "gateway":
		client, err = newGatewayClient(cfg)
	case "gemini":
		client, err = newGeminiClient(cfg)
	default:
		return nil, fmt.Errorf("%w: unsupported classifier provider %q", common.ErrInvalidConfig, cfg.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create classifier client: %w", err)
	}

	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 2
	}
	retryDelay := cfg.RetryDelay
	if retryDelay == 0 {
		retryDelay = 500 * time.Millisecond
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Classifier{
		client:     client,
		logger:     logger,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}, nil
}

// Classify asks the remote classifier to categorize one payment. The prompt
// carries the amount and the raw receiver identifier; the known category
// names act as a vocabulary hint, not a hard constraint.
func (c *Classifier) Classify(ctx context.Context, amount float64, receiver string, categories []string) (*model.Suggestion, error) {
	prompt := BuildPrompt(amount, receiver)

	var suggestion model.Suggestion
	err := retry.Do(
		func() error {
			var classifyErr error
			suggestion, classifyErr = c.client.Classify(ctx, prompt, categories)
			return classifyErr
		},
		retry.Context(ctx),
		retry.Attempts(c.maxRetries),
		retry.Delay(c.retryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrClassifierUnavailable, err)
	}

	c.logger.Debug("classifier suggestion",
		"receiver", receiver,
		"category", suggestion.Category,
		"description", suggestion.Description,
		"type", suggestion.Type,
		"confidence", suggestion.Confidence)

	return &suggestion, nil
}

// BuildPrompt composes the classifier prompt for one payment event.
func BuildPrompt(amount float64, receiver string) string {
	return fmt.Sprintf("₹ %s,%s", strconv.FormatFloat(amount, 'f', -1, 64), receiver)
}
