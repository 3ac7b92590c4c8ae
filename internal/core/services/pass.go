package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/stockwatch/internal/core/domain"
	"github.com/custodia-labs/stockwatch/internal/core/ports/driven"
	"github.com/custodia-labs/stockwatch/internal/core/ports/driving"
	"github.com/custodia-labs/stockwatch/internal/logger"
	"github.com/custodia-labs/stockwatch/internal/metrics"
)

// Ensure PassOrchestrator implements the interface.
var _ driving.PassRunner = (*PassOrchestrator)(nil)

// PassConfig selects what a pass observes.
type PassConfig struct {
	// Mode picks catalog queries or per-product pages.
	Mode domain.SourceMode

	// Catalog holds the queries read in catalog mode.
	Catalog []domain.CatalogQuery
}

// PassOrchestrator runs reconciliation passes: load the ledger, observe
// listings, reconcile, save and dispatch alerts. Only one pass runs at a
// time per orchestrator; stores implementing driven.LedgerLocker also
// exclude other processes.
type PassOrchestrator struct {
	store      driven.LedgerStore
	source     driven.ListingSource
	reconciler *Reconciler
	dispatcher *AlertDispatcher
	passStore  driven.PassStore
	alertLog   driven.AlertLog
	config     PassConfig

	now func() time.Time

	// Status tracking
	mu      sync.Mutex
	current *domain.PassSummary
	last    *domain.PassSummary
}

// NewPassOrchestrator creates a pass orchestrator.
// The dispatcher, passStore and alertLog are optional.
func NewPassOrchestrator(
	store driven.LedgerStore,
	source driven.ListingSource,
	reconciler *Reconciler,
	dispatcher *AlertDispatcher,
	passStore driven.PassStore,
	alertLog driven.AlertLog,
	config PassConfig,
) *PassOrchestrator {
	return &PassOrchestrator{
		store:      store,
		source:     source,
		reconciler: reconciler,
		dispatcher: dispatcher,
		passStore:  passStore,
		alertLog:   alertLog,
		config:     config,
		now:        time.Now,
	}
}

// Run performs one reconciliation pass.
func (o *PassOrchestrator) Run(ctx context.Context) (*domain.PassSummary, error) {
	summary := &domain.PassSummary{
		RunID:     uuid.NewString(),
		StartedAt: o.now(),
	}
	if !o.begin(summary) {
		metrics.RecordPass(metrics.OutcomeBusy, 0)
		return nil, domain.ErrPassInProgress
	}

	logger.Section("Reconciliation pass " + summary.RunID)
	err := o.run(ctx, summary)

	summary.EndedAt = o.now()
	if err != nil {
		summary.Error = err.Error()
		logger.Error("Pass %s aborted: %v", summary.RunID, err)
	} else {
		logger.Info("Pass complete: %d processed, %d skipped, %d unmatched, %d alerts",
			summary.Processed, summary.Skipped, summary.Unmatched, summary.Alerted)
	}
	o.record(ctx, summary, err)
	o.finish(summary)

	return summary, err
}

// Status returns the running pass and the last finished one.
func (o *PassOrchestrator) Status() driving.PassStatus {
	o.mu.Lock()
	defer o.mu.Unlock()

	status := driving.PassStatus{}
	if o.current != nil {
		status.Running = true
		status.RunID = o.current.RunID
		status.StartedAt = o.current.StartedAt
	}
	if o.last != nil {
		last := *o.last
		status.Last = &last
	}
	return status
}

func (o *PassOrchestrator) begin(summary *domain.PassSummary) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current != nil {
		return false
	}
	o.current = summary
	return true
}

func (o *PassOrchestrator) finish(summary *domain.PassSummary) {
	o.mu.Lock()
	defer o.mu.Unlock()
	last := *summary
	o.last = &last
	o.current = nil
}

//nolint:gocyclo // Orchestration function with necessary sequential steps
func (o *PassOrchestrator) run(ctx context.Context, summary *domain.PassSummary) error {
	// 1. Exclude other writers
	if locker, ok := o.store.(driven.LedgerLocker); ok {
		unlock, err := locker.Lock(ctx)
		if err != nil {
			return fmt.Errorf("lock ledger: %w", err)
		}
		defer func() {
			if err := unlock(); err != nil {
				logger.Warn("Release ledger lock: %v", err)
			}
		}()
	}

	// 2. Load
	products, err := o.store.Load(ctx)
	if err != nil {
		return storeUnavailable("load ledger", err)
	}
	ledger, err := domain.NewLedger(products, o.store.Normalize)
	if err != nil {
		return storeUnavailable("load ledger", err)
	}
	logger.Info("Loaded %d products", ledger.Len())

	// 3. Observe
	queries := o.queries(ledger)
	batch, fetchErr := o.source.Fetch(ctx, queries)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("fetch listings: %w", ctxErr)
	}
	summary.Observed = len(batch)
	summary.FetchErrors = logItemErrors(fetchErr)
	logger.Info("Observed %d listings from %d queries (%d errors)", len(batch), len(queries), summary.FetchErrors)

	// 4. Reconcile
	result := o.reconciler.Reconcile(ledger, batch, summary.StartedAt)
	summary.Processed = result.Processed
	summary.Skipped = result.Skipped
	summary.Unmatched = result.Unmatched
	summary.Alerted = len(result.Alerts)
	metrics.RecordObservations(result.Processed, result.Skipped, result.Unmatched)
	for i := range result.Alerts {
		metrics.RecordAlert(result.Alerts[i].Kind.String())
	}

	// 5. Save before anything leaves the process
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}
	if result.Mutated() {
		if err := o.store.Save(ctx, ledger.Products()); err != nil {
			return storeUnavailable("save ledger", err)
		}
		summary.Saved = true
		logger.Info("Saved ledger (%d products changed)", len(result.Changed))
	}

	// 6. Record and dispatch alerts
	if o.alertLog != nil && len(result.Alerts) > 0 {
		if err := o.alertLog.Append(ctx, summary.RunID, result.Alerts); err != nil {
			logger.Warn("Record alerts: %v", err)
		}
	}
	if o.dispatcher != nil {
		report := o.dispatcher.Dispatch(ctx, result.Alerts)
		summary.Delivered = report.Delivered
		summary.DispatchFailed = report.Failed + report.Dropped
	}

	return nil
}

// queries builds the listing queries for this pass.
func (o *PassOrchestrator) queries(ledger *domain.Ledger) []domain.CatalogQuery {
	if o.config.Mode == domain.SourceModeCatalog {
		queries := make([]domain.CatalogQuery, len(o.config.Catalog))
		for i, q := range o.config.Catalog {
			if q.Kind == "" {
				q.Kind = domain.QueryCatalog
			}
			queries[i] = q
		}
		return queries
	}

	products := ledger.Products()
	queries := make([]domain.CatalogQuery, len(products))
	for i := range products {
		queries[i] = domain.CatalogQuery{
			Name: products[i].DisplayName(),
			URL:  products[i].URL,
			Kind: domain.QueryProduct,
		}
	}
	return queries
}

// record stores the summary and updates pass metrics.
func (o *PassOrchestrator) record(ctx context.Context, summary *domain.PassSummary, err error) {
	metrics.RecordPass(passOutcome(err), summary.Duration().Seconds())

	if o.passStore == nil {
		return
	}
	// A cancelled pass is still recorded.
	if err := o.passStore.Record(context.WithoutCancel(ctx), summary); err != nil {
		logger.Warn("Record pass %s: %v", summary.RunID, err)
	}
}

func passOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, domain.ErrPassInProgress):
		return metrics.OutcomeBusy
	case errors.Is(err, domain.ErrStoreUnavailable):
		return metrics.OutcomeStoreUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.OutcomeCancelled
	default:
		return metrics.OutcomeError
	}
}

// storeUnavailable wraps err so that callers can classify it as
// domain.ErrStoreUnavailable.
func storeUnavailable(op string, err error) error {
	if errors.Is(err, domain.ErrStoreUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}

// logItemErrors logs each per-item failure and returns how many there were.
func logItemErrors(err error) int {
	if err == nil {
		return 0
	}
	var errs []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	} else {
		errs = []error{err}
	}
	for _, e := range errs {
		logger.Warn("Listing skipped: %v", e)
	}
	return len(errs)
}
