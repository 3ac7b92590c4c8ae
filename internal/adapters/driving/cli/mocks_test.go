package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/custodia-labs/stockwatch/internal/core/domain"
	"github.com/custodia-labs/stockwatch/internal/core/ports/driving"
)

// mockPassRunner implements driving.PassRunner for testing.
type mockPassRunner struct {
	summary *domain.PassSummary
	err     error
	calls   int
}

func (m *mockPassRunner) Run(_ context.Context) (*domain.PassSummary, error) {
	m.calls++
	return m.summary, m.err
}

func (m *mockPassRunner) Status() driving.PassStatus {
	return driving.PassStatus{Last: m.summary}
}

// mockImportService implements driving.ImportService for testing.
type mockImportService struct {
	queries []domain.CatalogQuery
	result  *domain.ImportResult
	err     error
}

func (m *mockImportService) Import(_ context.Context, queries []domain.CatalogQuery) (*domain.ImportResult, error) {
	m.queries = queries
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return &domain.ImportResult{}, nil
	}
	return m.result, nil
}

// mockCatalogService implements driving.CatalogService for testing.
type mockCatalogService struct {
	mu       sync.Mutex
	products []domain.Product
	filter   domain.CatalogFilter
	lists    int
	err      error
}

func (m *mockCatalogService) List(_ context.Context, filter domain.CatalogFilter) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filter = filter
	m.lists++
	return m.products, m.err
}

func (m *mockCatalogService) Get(_ context.Context, rawURL string) (*domain.Product, error) {
	for i := range m.products {
		if m.products[i].URL == rawURL {
			p := m.products[i].Clone()
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockCatalogService) listCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lists
}

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	saved       *domain.AppSettings
	mode        domain.SourceMode
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings()}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.saved = settings
	return nil
}

func (m *mockSettingsService) SetSourceMode(mode domain.SourceMode) error {
	m.mode = mode
	m.settings.Source.Mode = mode
	return nil
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// mockScheduler implements driving.Scheduler for testing.
// Start returns immediately with startErr.
type mockScheduler struct {
	startErr error
	started  bool
	stopped  bool
}

func (m *mockScheduler) Start(_ context.Context) error {
	m.started = true
	return m.startErr
}

func (m *mockScheduler) Stop() error {
	m.stopped = true
	return nil
}

// mockPassHistory implements driving.PassHistory for testing.
type mockPassHistory struct {
	passes []domain.PassSummary
	limit  int
}

func (m *mockPassHistory) List(_ context.Context, limit int) ([]domain.PassSummary, error) {
	m.limit = limit
	return m.passes, nil
}

// mockAlertHistory implements driving.AlertHistory for testing.
type mockAlertHistory struct {
	alerts []domain.Alert
}

func (m *mockAlertHistory) Recent(_ context.Context, _ int) ([]domain.Alert, error) {
	return m.alerts, nil
}

// mockWatcher implements driving.CatalogWatcher for testing.
type mockWatcher struct {
	ch chan struct{}
}

func (m *mockWatcher) Watch(_ context.Context) (<-chan struct{}, error) {
	return m.ch, nil
}

// setupServices installs s for the duration of the test.
func setupServices(t *testing.T, s *Services) {
	t.Helper()
	SetServices(s)
	t.Cleanup(func() {
		SetServices(&Services{})
	})
}

// executeCommand runs the root command with args and returns its output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(bytes.NewReader(nil))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores flag variables between command executions.
func resetFlags() {
	runDryRun = false
	importURL, importPages, importStatus = "", 1, string(domain.StatusInStock)
	productsStatus, productsSearch, productsSort = string(domain.FilterAll), "", ""
	productsLimit, productsJSON, productsFollow = 0, false, false
	historyLimit, historyAlerts = 10, false
	scheduleMetricsAddr = ""
}

