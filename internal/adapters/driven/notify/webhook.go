package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/custodia-labs/stockwatch/internal/core/domain"
	"github.com/custodia-labs/stockwatch/internal/core/ports/driven"
)

// Ensure WebhookSink implements the interface.
var _ driven.NotificationSink = (*WebhookSink)(nil)

// MaxWebhookContent is the longest message a chat webhook accepts.
const MaxWebhookContent = 2000

// DefaultWebhookTimeout bounds a single webhook post.
const DefaultWebhookTimeout = 10 * time.Second

type webhookPayload struct {
	Content string `json:"content"`
}

// WebhookSink posts messages to a Discord-style webhook.
type WebhookSink struct {
	url  string
	http *resty.Client
}

// NewWebhookSink creates a sink posting to url.
func NewWebhookSink(url string) *WebhookSink {
	client := resty.New().
		SetTimeout(DefaultWebhookTimeout).
		SetHeader("Content-Type", "application/json")
	return &WebhookSink{url: url, http: client}
}

// Deliver posts one message. Any non-2xx response is a dispatch failure.
func (s *WebhookSink) Deliver(ctx context.Context, message string) error {
	res, err := s.http.R().
		SetContext(ctx).
		SetBody(webhookPayload{Content: truncate(message, MaxWebhookContent)}).
		Post(s.url)
	if err != nil {
		return fmt.Errorf("%w: webhook: %w", domain.ErrDispatch, err)
	}
	if !res.IsSuccess() {
		return fmt.Errorf("%w: webhook returned HTTP %d", domain.ErrDispatch, res.StatusCode())
	}
	return nil
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
