package driven

import "context"

// NotificationSink delivers a formatted alert message to a channel.
type NotificationSink interface {
	// Deliver sends one message. Failures wrap domain.ErrDispatch.
	Deliver(ctx context.Context, message string) error
}
