package domain

import "time"

// SourceMode selects which queries a reconciliation pass observes.
type SourceMode string

// Available source modes.
const (
	// SourceModeCatalog reads the configured catalog queries.
	SourceModeCatalog SourceMode = "catalog"

	// SourceModeProduct reads each tracked product's own page.
	SourceModeProduct SourceMode = "product"
)

// IsValid returns true if the source mode is recognised.
func (m SourceMode) IsValid() bool {
	return m == SourceModeCatalog || m == SourceModeProduct
}

// String returns the string representation.
func (m SourceMode) String() string {
	return string(m)
}

// Description returns a human-readable description of the mode.
func (m SourceMode) Description() string {
	switch m {
	case SourceModeCatalog:
		return "Catalog (paginated listing grids)"
	case SourceModeProduct:
		return "Product (one page per tracked product)"
	default:
		return "Unknown"
	}
}

// LedgerSettings locates the ledger file.
type LedgerSettings struct {
	// Path is the ledger file location.
	Path string
}

// SourceSettings configures the listing source.
type SourceSettings struct {
	Mode SourceMode

	// BaseURL resolves relative links found in catalog pages.
	BaseURL string

	// Concurrency bounds parallel fetches.
	Concurrency int

	// RequestsPerSecond paces requests to the storefront.
	RequestsPerSecond float64

	// Timeout bounds a single fetch.
	Timeout time.Duration

	Selectors Selectors

	// Catalog holds the queries read in catalog mode and by import.
	Catalog []CatalogQuery
}

// Concurrency limits for the listing source.
const (
	MinSourceConcurrency     = 1
	MaxSourceConcurrency     = 8
	DefaultSourceConcurrency = 4
)

// ClampedConcurrency keeps Concurrency within the supported range.
func (s SourceSettings) ClampedConcurrency() int {
	switch {
	case s.Concurrency < MinSourceConcurrency:
		return DefaultSourceConcurrency
	case s.Concurrency > MaxSourceConcurrency:
		return MaxSourceConcurrency
	default:
		return s.Concurrency
	}
}

// DispatchSettings configures alert delivery.
type DispatchSettings struct {
	// Interval is the pause between deliveries.
	Interval time.Duration

	// WebhookURL is the chat webhook. Empty disables it.
	WebhookURL string

	// Email configures SMTP delivery. Unconfigured disables it.
	Email EmailSettings
}

// EmailSettings configures the SMTP sink.
type EmailSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// IsConfigured returns true if enough is set to send mail.
func (e EmailSettings) IsConfigured() bool {
	return e.Host != "" && e.From != "" && len(e.To) > 0
}

// AppSettings holds all application settings.
type AppSettings struct {
	Ledger    LedgerSettings
	Source    SourceSettings
	Alerts    AlertPolicy
	Dispatch  DispatchSettings
	Scheduler SchedulerConfig
}

// DefaultAppSettings returns settings with sensible defaults.
// Notification channels are left unconfigured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Source: SourceSettings{
			Mode:              SourceModeProduct,
			Concurrency:       DefaultSourceConcurrency,
			RequestsPerSecond: 2,
			Timeout:           20 * time.Second,
			Selectors:         DefaultSelectors(),
		},
		Alerts: DefaultAlertPolicy(),
		Dispatch: DispatchSettings{
			Interval: time.Second,
		},
		Scheduler: DefaultSchedulerConfig(),
	}
}

// AllSourceModes returns all available source modes.
func AllSourceModes() []SourceMode {
	return []SourceMode{SourceModeCatalog, SourceModeProduct}
}
