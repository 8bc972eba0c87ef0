package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"rupeeflow/internal/common"
	"rupeeflow/internal/model"
)

// gatewayClient implements Client against the classifier gateway's HTTP API:
// a POST carrying {"prompt": ..., "categories": [...]} answered with a
// {"category", "description", "type", "confidence_score"} JSON object.
type gatewayClient struct {
	httpClient *http.Client
	url        string
}

// newGatewayClient creates a client for the classifier gateway endpoint.
func newGatewayClient(cfg Config) (Client, error) {
	if cfg.GatewayURL == "" {
		return nil, fmt.Errorf("%w: classifier gateway URL is required", common.ErrMissingConfig)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &gatewayClient{
		url: cfg.GatewayURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// Classify sends a classification request to the gateway.
func (c *gatewayClient) Classify(ctx context.Context, prompt string, categories []string) (model.Suggestion, error) {
	requestBody := map[string]any{
		"prompt":     prompt,
		"categories": categories,
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return model.Suggestion{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(jsonBody))
	if err != nil {
		return model.Suggestion{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.Suggestion{}, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Suggestion{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return model.Suggestion{}, fmt.Errorf("classifier gateway error (status %d): %s", resp.StatusCode, string(body))
	}

	return parseSuggestion(body)
}
