package driven

import (
	"context"

	"github.com/custodia-labs/stockwatch/internal/core/domain"
)

// PassStore persists reconciliation pass summaries.
type PassStore interface {
	// Record stores a completed or aborted pass.
	Record(ctx context.Context, summary *domain.PassSummary) error

	// List returns recent passes, most recent first.
	// A limit of zero or less returns all passes.
	List(ctx context.Context, limit int) ([]domain.PassSummary, error)
}

// AlertLog persists raised alerts.
type AlertLog interface {
	// Append stores the alerts raised by a pass.
	Append(ctx context.Context, runID string, alerts []domain.Alert) error

	// Recent returns the newest alerts, most recent first.
	Recent(ctx context.Context, limit int) ([]domain.Alert, error)
}
