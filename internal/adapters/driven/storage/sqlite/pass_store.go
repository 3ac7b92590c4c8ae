package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/custodia-labs/stockwatch/internal/core/domain"
	"github.com/custodia-labs/stockwatch/internal/core/ports/driven"
)

// passStore implements driven.PassStore.
type passStore struct {
	store *Store
}

var _ driven.PassStore = (*passStore)(nil)

// Record stores a completed or aborted pass.
// Recording the same run twice replaces the earlier row.
func (s *passStore) Record(ctx context.Context, summary *domain.PassSummary) error {
	if summary == nil || summary.RunID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO pass_runs (run_id, started_at, ended_at, observed, fetch_errors,
			processed, skipped, unmatched, alerted, delivered, dispatch_failed, saved, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			started_at = excluded.started_at,
			ended_at = excluded.ended_at,
			observed = excluded.observed,
			fetch_errors = excluded.fetch_errors,
			processed = excluded.processed,
			skipped = excluded.skipped,
			unmatched = excluded.unmatched,
			alerted = excluded.alerted,
			delivered = excluded.delivered,
			dispatch_failed = excluded.dispatch_failed,
			saved = excluded.saved,
			error = excluded.error
	`, summary.RunID, formatTime(summary.StartedAt), formatTime(summary.EndedAt),
		summary.Observed, summary.FetchErrors, summary.Processed, summary.Skipped,
		summary.Unmatched, summary.Alerted, summary.Delivered, summary.DispatchFailed,
		boolToInt(summary.Saved), nullString(summary.Error))
	if err != nil {
		return fmt.Errorf("recording pass: %w", err)
	}
	return nil
}

// List returns recent passes, most recent first.
func (s *passStore) List(ctx context.Context, limit int) ([]domain.PassSummary, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT run_id, started_at, ended_at, observed, fetch_errors, processed, skipped,
			unmatched, alerted, delivered, dispatch_failed, saved, error
		FROM pass_runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying passes: %w", err)
	}
	defer rows.Close()

	var passes []domain.PassSummary //nolint:prealloc // size unknown from query
	for rows.Next() {
		var p domain.PassSummary
		var startedAt, endedAt string
		var saved int
		var errMsg sql.NullString

		if err := rows.Scan(&p.RunID, &startedAt, &endedAt, &p.Observed, &p.FetchErrors,
			&p.Processed, &p.Skipped, &p.Unmatched, &p.Alerted, &p.Delivered,
			&p.DispatchFailed, &saved, &errMsg); err != nil {
			return nil, fmt.Errorf("scanning pass: %w", err)
		}
		p.StartedAt = parseTime(startedAt)
		p.EndedAt = parseTime(endedAt)
		p.Saved = saved == 1
		if errMsg.Valid {
			p.Error = errMsg.String
		}
		passes = append(passes, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating passes: %w", err)
	}

	return passes, nil
}
