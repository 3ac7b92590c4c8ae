// Package metrics exposes prometheus collectors for reconciliation passes,
// alert dispatch and the listing source.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stockwatch"

var (
	// passesTotal counts passes by outcome.
	// Labels: outcome (success, store_unavailable, cancelled, busy, error)
	passesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pass",
		Name:      "total",
		Help:      "Reconciliation passes by outcome",
	}, []string{"outcome"})

	passDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "pass",
		Name:      "duration_seconds",
		Help:      "Reconciliation pass duration in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
	})

	// observationsTotal counts observations by how the reconciler used them.
	// Labels: result (processed, skipped, unmatched)
	observationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reconcile",
		Name:      "observations_total",
		Help:      "Observations handled by the reconciler",
	}, []string{"result"})

	// alertsTotal counts raised alerts.
	// Labels: kind (restock, price_drop, price_rise, target_met)
	alertsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reconcile",
		Name:      "alerts_total",
		Help:      "Alerts raised by kind",
	}, []string{"kind"})

	// dispatchTotal counts delivery attempts.
	// Labels: result (delivered, failed, dropped)
	dispatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "dispatch",
		Name:      "total",
		Help:      "Alert deliveries by result",
	}, []string{"result"})

	// fetchTotal counts listing source requests.
	// Labels: result (ok, fetch_error, parse_error)
	fetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "source",
		Name:      "requests_total",
		Help:      "Listing source requests by result",
	}, []string{"result"})
)

// Pass outcomes.
const (
	OutcomeSuccess          = "success"
	OutcomeStoreUnavailable = "store_unavailable"
	OutcomeCancelled        = "cancelled"
	OutcomeBusy             = "busy"
	OutcomeError            = "error"
)

// Fetch results.
const (
	FetchOK         = "ok"
	FetchError      = "fetch_error"
	FetchParseError = "parse_error"
)

// RecordPass records a finished pass.
func RecordPass(outcome string, durationSec float64) {
	passesTotal.WithLabelValues(outcome).Inc()
	passDuration.Observe(durationSec)
}

// RecordObservations records reconciler counts for one pass.
func RecordObservations(processed, skipped, unmatched int) {
	observationsTotal.WithLabelValues("processed").Add(float64(processed))
	observationsTotal.WithLabelValues("skipped").Add(float64(skipped))
	observationsTotal.WithLabelValues("unmatched").Add(float64(unmatched))
}

// RecordAlert records one raised alert.
func RecordAlert(kind string) {
	alertsTotal.WithLabelValues(kind).Inc()
}

// RecordDispatch records one delivery attempt result.
func RecordDispatch(result string) {
	dispatchTotal.WithLabelValues(result).Inc()
}

// RecordFetch records one listing source request.
func RecordFetch(result string) {
	fetchTotal.WithLabelValues(result).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
