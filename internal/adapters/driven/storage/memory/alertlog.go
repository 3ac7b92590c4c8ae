package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/stockwatch/internal/core/domain"
	"github.com/custodia-labs/stockwatch/internal/core/ports/driven"
)

// Ensure AlertLog implements the interface.
var _ driven.AlertLog = (*AlertLog)(nil)

// AlertLog is an in-memory implementation of driven.AlertLog.
type AlertLog struct {
	mu     sync.RWMutex
	alerts []domain.Alert
	runs   map[string]int
}

// NewAlertLog creates a new in-memory alert log.
func NewAlertLog() *AlertLog {
	return &AlertLog{runs: make(map[string]int)}
}

// Append stores the alerts raised by a pass.
func (l *AlertLog) Append(_ context.Context, runID string, alerts []domain.Alert) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.alerts = append(l.alerts, alerts...)
	l.runs[runID] += len(alerts)
	return nil
}

// Recent returns the newest alerts, most recent first.
func (l *AlertLog) Recent(_ context.Context, limit int) ([]domain.Alert, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return newestFirst(l.alerts, limit), nil
}

// CountForRun returns how many alerts a pass appended.
func (l *AlertLog) CountForRun(runID string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.runs[runID]
}
