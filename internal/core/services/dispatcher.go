package services

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/stockwatch/internal/core/domain"
	"github.com/custodia-labs/stockwatch/internal/core/ports/driven"
	"github.com/custodia-labs/stockwatch/internal/logger"
	"github.com/custodia-labs/stockwatch/internal/metrics"
)

// AlertDispatcher delivers alerts to a notification sink, one at a time,
// paced by a rate limiter. Delivery is best-effort: failures are logged
// and counted, never returned.
type AlertDispatcher struct {
	sink    driven.NotificationSink
	limiter *rate.Limiter
}

// NewAlertDispatcher creates a dispatcher that waits interval between
// deliveries. A nil sink disables delivery. A non-positive interval
// disables pacing.
func NewAlertDispatcher(sink driven.NotificationSink, interval time.Duration) *AlertDispatcher {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &AlertDispatcher{
		sink:    sink,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Enabled reports whether a sink is configured.
func (d *AlertDispatcher) Enabled() bool {
	return d != nil && d.sink != nil
}

// Dispatch delivers each alert's message in order. If ctx ends, the
// remaining alerts are counted as dropped.
func (d *AlertDispatcher) Dispatch(ctx context.Context, alerts []domain.Alert) domain.DispatchReport {
	var report domain.DispatchReport
	if len(alerts) == 0 {
		return report
	}
	if !d.Enabled() {
		report.Disabled = true
		logger.Info("Alert dispatch disabled, %d alerts not sent", len(alerts))
		return report
	}

	for i := range alerts {
		if err := d.limiter.Wait(ctx); err != nil {
			report.Dropped = len(alerts) - i
			logger.Warn("Dispatch stopped, %d alerts dropped: %v", report.Dropped, err)
			for range report.Dropped {
				metrics.RecordDispatch("dropped")
			}
			break
		}

		if err := d.sink.Deliver(ctx, alerts[i].Message); err != nil {
			report.Failed++
			metrics.RecordDispatch("failed")
			logger.Warn("Deliver %s alert for %s: %v", alerts[i].Kind, alerts[i].ProductURL, err)
			continue
		}
		report.Delivered++
		metrics.RecordDispatch("delivered")
	}

	logger.Info("Dispatched %d alerts (%d failed, %d dropped)", report.Delivered, report.Failed, report.Dropped)
	return report
}
