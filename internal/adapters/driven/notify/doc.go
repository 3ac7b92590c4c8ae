// Package notify provides notification sinks for alert delivery.
//
// Each sink implements driven.NotificationSink. Delivery failures wrap
// domain.ErrDispatch so the dispatcher can count them without stopping.
//
// Available sinks:
//   - WebhookSink posts {"content": message} to a chat webhook
//   - EmailSink sends plain-text mail over SMTP
//   - LogSink writes messages to a writer, used for dry runs
//   - MultiSink fans a message out to several sinks
package notify
