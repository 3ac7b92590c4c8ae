package notify

import (
	"context"
	"errors"

	"github.com/custodia-labs/stockwatch/internal/core/domain"
	"github.com/custodia-labs/stockwatch/internal/core/ports/driven"
)

// Ensure MultiSink implements the interface.
var _ driven.NotificationSink = (MultiSink)(nil)

// MultiSink delivers every message to each of its sinks.
type MultiSink []driven.NotificationSink

// Deliver tries every sink and joins their errors.
func (m MultiSink) Deliver(ctx context.Context, message string) error {
	var errs []error
	for _, sink := range m {
		if err := sink.Deliver(ctx, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FromSettings builds the sinks configured in settings.
// It returns nil when no channel is configured.
func FromSettings(settings domain.DispatchSettings) driven.NotificationSink {
	var sinks MultiSink
	if settings.WebhookURL != "" {
		sinks = append(sinks, NewWebhookSink(settings.WebhookURL))
	}
	if settings.Email.IsConfigured() {
		sinks = append(sinks, NewEmailSink(settings.Email))
	}

	switch len(sinks) {
	case 0:
		return nil
	case 1:
		return sinks[0]
	default:
		return sinks
	}
}
