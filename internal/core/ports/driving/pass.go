package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/stockwatch/internal/core/domain"
)

// PassRunner runs reconciliation passes against the ledger.
type PassRunner interface {
	// Run performs one full pass: load, observe, reconcile, save, dispatch.
	// Returns domain.ErrPassInProgress if a pass is already running and an
	// error wrapping domain.ErrStoreUnavailable if the ledger cannot be
	// loaded or saved. The summary is returned even for aborted passes.
	Run(ctx context.Context) (*domain.PassSummary, error)

	// Status reports the running pass, if any, and the last completed one.
	Status() PassStatus
}

// PassStatus represents the current state of the pass runner.
type PassStatus struct {
	// Running indicates if a pass is currently in progress.
	Running bool

	// RunID identifies the running pass.
	RunID string

	// StartedAt is when the running pass began.
	StartedAt time.Time

	// Last is the most recent finished pass. Nil before the first pass.
	Last *domain.PassSummary
}
