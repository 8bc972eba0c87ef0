package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"rupeeflow/internal/service"
)

// PushNotifier delivers notifications by POSTing JSON to a push gateway,
// which forwards them to the user's device.
type PushNotifier struct {
	httpClient *http.Client
	url        string
}

// NewPushNotifier creates a notifier for the given push gateway URL.
func NewPushNotifier(gatewayURL string) (*PushNotifier, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("push gateway URL is required")
	}

	return &PushNotifier{
		url: gatewayURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// Schedule posts the notification to the push gateway.
func (n *PushNotifier) Schedule(ctx context.Context, notification service.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}

	body, err := json.Marshal(map[string]string{
		"id":        notification.ID,
		"title":     notification.Title,
		"body":      notification.Body,
		"deep_link": notification.DeepLink,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("push gateway error (status %d): %s", resp.StatusCode, string(payload))
	}

	return nil
}
