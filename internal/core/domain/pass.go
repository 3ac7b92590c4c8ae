package domain

import "time"

// ReconcileResult is the outcome of merging one observation batch.
type ReconcileResult struct {
	// Alerts raised, in processing order.
	Alerts []Alert

	// Processed counts observations applied to a tracked product.
	Processed int

	// Skipped counts observations dropped for unknown status or
	// superseded by a later duplicate.
	Skipped int

	// Unmatched counts observations for products the ledger does not track.
	Unmatched int

	// Changed lists the keys whose stored state differs after the merge.
	Changed []string
}

// Mutated reports whether any product changed.
func (r ReconcileResult) Mutated() bool {
	return len(r.Changed) > 0
}

// DispatchReport counts delivery outcomes for one pass.
type DispatchReport struct {
	Delivered int
	Failed    int
	Dropped   int
	Disabled  bool
}

// PassSummary records one reconciliation pass.
type PassSummary struct {
	// RunID uniquely identifies the pass.
	RunID string

	StartedAt time.Time
	EndedAt   time.Time

	// Observed is the number of observations returned by the source.
	Observed int

	// FetchErrors counts items the source could not fetch or parse.
	FetchErrors int

	Processed int
	Skipped   int
	Unmatched int
	Alerted   int

	Delivered      int
	DispatchFailed int

	// Saved reports whether the ledger was written.
	Saved bool

	// Error holds the abort reason for failed passes.
	Error string
}

// Duration returns how long the pass ran.
func (s PassSummary) Duration() time.Duration {
	return s.EndedAt.Sub(s.StartedAt)
}

// Succeeded reports whether the pass ran to completion.
func (s PassSummary) Succeeded() bool {
	return s.Error == ""
}

// ImportResult is the outcome of an import run.
type ImportResult struct {
	// Seen counts observations returned by the source.
	Seen int

	// Added counts new products written to the ledger.
	Added int

	// Duplicates counts observations already tracked or repeated.
	Duplicates int

	// FetchErrors counts items the source could not fetch or parse.
	FetchErrors int
}
