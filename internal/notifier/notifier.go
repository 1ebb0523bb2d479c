package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/courseops/scheduling-api/internal/models"
)

// Notifier delivers a domain event to an external consumer. Delivery happens
// strictly after the transition commits and is never awaited by the caller.
type Notifier interface {
	Notify(ctx context.Context, event models.Event) error
}

// WebhookNotifier POSTs events as JSON to a configured endpoint.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier constructs a webhook sink with a bounded timeout.
func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Notify implements Notifier.
func (n *WebhookNotifier) Notify(ctx context.Context, event models.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.ID, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-Type", string(event.Type))

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver event %s: %w", event.ID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("deliver event %s: unexpected status %d", event.ID, resp.StatusCode)
	}
	return nil
}

// LogNotifier writes events to the structured log. Used as the default sink
// when no webhook is configured.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier constructs a log sink.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(_ context.Context, event models.Event) error {
	n.logger.Info("domain_event",
		zap.String("event_id", event.ID),
		zap.String("type", string(event.Type)),
		zap.String("request_id", event.RequestID),
		zap.Time("occurred_at", event.OccurredAt),
	)
	return nil
}
