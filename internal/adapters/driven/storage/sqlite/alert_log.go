package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/custodia-labs/stockwatch/internal/core/domain"
	"github.com/custodia-labs/stockwatch/internal/core/ports/driven"
)

// alertLog implements driven.AlertLog.
type alertLog struct {
	store *Store
}

var _ driven.AlertLog = (*alertLog)(nil)

// Append stores the alerts raised by a pass in one transaction.
func (l *alertLog) Append(ctx context.Context, runID string, alerts []domain.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	tx, err := l.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning alert transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO alerts (run_id, kind, product_url, product_name, old_price, new_price,
			old_status, new_status, change_percent, message, raised_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing alert insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range alerts {
		if _, err := stmt.ExecContext(ctx, runID, string(a.Kind), a.ProductURL,
			nullString(a.ProductName), a.OldPrice, a.NewPrice,
			a.OldStatus.String(), a.NewStatus.String(), a.ChangePercent,
			a.Message, formatTime(a.RaisedAt)); err != nil {
			return fmt.Errorf("inserting alert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing alerts: %w", err)
	}
	return nil
}

// Recent returns the newest alerts, most recent first.
func (l *alertLog) Recent(ctx context.Context, limit int) ([]domain.Alert, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := l.store.db.QueryContext(ctx, `
		SELECT kind, product_url, product_name, old_price, new_price, old_status,
			new_status, change_percent, message, raised_at
		FROM alerts
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying alerts: %w", err)
	}
	defer rows.Close()

	var alerts []domain.Alert //nolint:prealloc // size unknown from query
	for rows.Next() {
		var a domain.Alert
		var kind, oldStatus, newStatus, raisedAt string
		var name sql.NullString

		if err := rows.Scan(&kind, &a.ProductURL, &name, &a.OldPrice, &a.NewPrice,
			&oldStatus, &newStatus, &a.ChangePercent, &a.Message, &raisedAt); err != nil {
			return nil, fmt.Errorf("scanning alert: %w", err)
		}
		a.Kind = domain.AlertKind(kind)
		a.ProductName = name.String
		a.OldStatus = domain.ParseStockStatus(oldStatus)
		a.NewStatus = domain.ParseStockStatus(newStatus)
		a.RaisedAt = parseTime(raisedAt)
		alerts = append(alerts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating alerts: %w", err)
	}

	return alerts, nil
}
