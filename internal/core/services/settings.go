package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/stockwatch/internal/core/domain"
	"github.com/custodia-labs/stockwatch/internal/core/ports/driven"
	"github.com/custodia-labs/stockwatch/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyLedgerPath        = "ledger.path"
	keySourceMode        = "source.mode"
	keySourceBaseURL     = "source.base_url"
	keySourceConcurrency = "source.concurrency"
	keySourceRPS         = "source.requests_per_second"
	keySourceTimeout     = "source.timeout"
	keyAlertsDrop        = "alerts.drop_threshold"
	keyAlertsNotifyRises = "alerts.notify_rises"
	keyAlertsRise        = "alerts.rise_threshold"
	keyDispatchInterval  = "dispatch.interval"
	keySchedulerEnabled  = "scheduler.enabled"
	keyCatalog           = "catalog"
	prefixSelectors      = "selectors."
)

// Environment variables holding notification secrets.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	EnvWebhookURL       = "STOCKWATCH_WEBHOOK_URL"
	EnvLegacyWebhookURL = "DISCORD_WEBHOOK_URL"
	EnvSMTPHost         = "STOCKWATCH_SMTP_HOST"
	EnvSMTPPort         = "STOCKWATCH_SMTP_PORT"
	EnvSMTPUsername     = "STOCKWATCH_SMTP_USERNAME"
	EnvSMTPPassword     = "STOCKWATCH_SMTP_PASSWORD"
	EnvSMTPFrom         = "STOCKWATCH_SMTP_FROM"
	EnvSMTPTo           = "STOCKWATCH_SMTP_TO"
)

// SettingsService manages application settings.
// Non-secret settings live in the config store; channel secrets come from
// the environment and are never written back.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
// A nil getenv reads the process environment.
func NewSettingsService(configStore driven.ConfigStore, getenv func(string) string) *SettingsService {
	if getenv == nil {
		getenv = os.Getenv
	}
	return &SettingsService{
		configStore: configStore,
		getenv:      getenv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	catalog, err := s.getCatalog()
	if err != nil {
		return nil, err
	}

	settings := &domain.AppSettings{
		Ledger: domain.LedgerSettings{
			Path: s.configStore.GetString(keyLedgerPath), // No default - resolved against the config dir by the caller
		},
		Source: domain.SourceSettings{
			Mode:              s.getSourceMode(defaults.Source.Mode),
			BaseURL:           s.configStore.GetString(keySourceBaseURL),
			Concurrency:       s.getInt(keySourceConcurrency, defaults.Source.Concurrency),
			RequestsPerSecond: s.getFloat(keySourceRPS, defaults.Source.RequestsPerSecond),
			Timeout:           s.getDuration(keySourceTimeout, defaults.Source.Timeout),
			Selectors:         s.getSelectors(defaults.Source.Selectors),
			Catalog:           catalog,
		},
		Alerts: domain.AlertPolicy{
			DropThreshold:    s.getFloat(keyAlertsDrop, defaults.Alerts.DropThreshold),
			NotifyPriceRises: s.getBool(keyAlertsNotifyRises, defaults.Alerts.NotifyPriceRises),
			RiseThreshold:    s.getFloat(keyAlertsRise, defaults.Alerts.RiseThreshold),
		},
		Dispatch: domain.DispatchSettings{
			Interval:   s.getDuration(keyDispatchInterval, defaults.Dispatch.Interval),
			WebhookURL: s.webhookURL(),
			Email:      s.emailSettings(),
		},
		Scheduler: s.GetSchedulerConfig(),
	}

	return settings, nil
}

// Save persists application settings. Secrets and catalog queries are not
// written; catalog queries are edited in the config file directly.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyLedgerPath, settings.Ledger.Path},
		{keySourceMode, settings.Source.Mode.String()},
		{keySourceBaseURL, settings.Source.BaseURL},
		{keySourceConcurrency, settings.Source.Concurrency},
		{keySourceRPS, settings.Source.RequestsPerSecond},
		{keySourceTimeout, settings.Source.Timeout.String()},
		{keyAlertsDrop, settings.Alerts.DropThreshold},
		{keyAlertsNotifyRises, settings.Alerts.NotifyPriceRises},
		{keyAlertsRise, settings.Alerts.RiseThreshold},
		{keyDispatchInterval, settings.Dispatch.Interval.String()},
		{keySchedulerEnabled, settings.Scheduler.Enabled},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	for key, value := range selectorValues(settings.Source.Selectors) {
		if err := s.configStore.Set(prefixSelectors+key, value); err != nil {
			return fmt.Errorf("save selectors.%s: %w", key, err)
		}
	}

	for taskID, configKey := range schedulerTaskKeys {
		cfg := settings.Scheduler.GetTaskConfig(taskID)
		prefix := "scheduler." + configKey + "."
		if err := s.configStore.Set(prefix+"enabled", cfg.Enabled); err != nil {
			return fmt.Errorf("save %senabled: %w", prefix, err)
		}
		if err := s.configStore.Set(prefix+"interval", cfg.Interval.String()); err != nil {
			return fmt.Errorf("save %sinterval: %w", prefix, err)
		}
	}

	return nil
}

// SetSourceMode updates the source mode.
func (s *SettingsService) SetSourceMode(mode domain.SourceMode) error {
	if !mode.IsValid() {
		return fmt.Errorf("invalid source mode: %s", mode)
	}
	return s.configStore.Set(keySourceMode, mode.String())
}

// Validate checks that current settings can drive a pass.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Source.Mode.IsValid() {
		return fmt.Errorf("invalid source mode: %s", settings.Source.Mode)
	}
	if settings.Source.Mode == domain.SourceModeCatalog && len(settings.Source.Catalog) == 0 {
		return fmt.Errorf("source mode %q requires at least one [[catalog]] entry",
			settings.Source.Mode.Description())
	}
	if settings.Alerts.DropThreshold <= 0 || settings.Alerts.DropThreshold >= 1 {
		return fmt.Errorf("alerts.drop_threshold must be between 0 and 1, got %v", settings.Alerts.DropThreshold)
	}
	if settings.Alerts.NotifyPriceRises && settings.Alerts.RiseThreshold <= 0 {
		return fmt.Errorf("alerts.rise_threshold must be positive, got %v", settings.Alerts.RiseThreshold)
	}
	if settings.Source.RequestsPerSecond < 0 {
		return fmt.Errorf("source.requests_per_second must not be negative, got %v", settings.Source.RequestsPerSecond)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// schedulerTaskKeys maps task IDs to their config key (underscore version for TOML).
var schedulerTaskKeys = map[string]string{
	domain.TaskIDLedgerReconcile: "ledger_reconcile",
}

// GetSchedulerConfig returns the scheduler configuration.
// Returns default configuration if nothing is configured.
func (s *SettingsService) GetSchedulerConfig() domain.SchedulerConfig {
	defaults := domain.DefaultSchedulerConfig()

	// Master switch
	defaults.Enabled = s.getBool(keySchedulerEnabled, defaults.Enabled)

	for taskID, configKey := range schedulerTaskKeys {
		prefix := "scheduler." + configKey + "."
		taskCfg := defaults.TaskConfigs[taskID]

		taskCfg.Enabled = s.getBool(prefix+"enabled", taskCfg.Enabled)
		// Duration string like "45m", "1h"
		taskCfg.Interval = s.getDuration(prefix+"interval", taskCfg.Interval)

		defaults.TaskConfigs[taskID] = taskCfg
	}

	return defaults
}

// getCatalog reads the [[catalog]] tables.
func (s *SettingsService) getCatalog() ([]domain.CatalogQuery, error) {
	tables := s.configStore.GetMapSlice(keyCatalog)
	if len(tables) == 0 {
		return nil, nil
	}

	queries := make([]domain.CatalogQuery, 0, len(tables))
	for i, t := range tables {
		q := domain.CatalogQuery{
			Name:          tableString(t, "name"),
			URL:           tableString(t, "url"),
			Kind:          domain.QueryKind(tableString(t, "kind")),
			Pages:         tableInt(t, "pages"),
			DefaultStatus: domain.ParseStockStatus(tableString(t, "default_status")),
		}
		if q.URL == "" {
			return nil, fmt.Errorf("%w: catalog entry %d has no url", domain.ErrInvalidInput, i+1)
		}
		if q.Kind == "" {
			q.Kind = domain.QueryCatalog
		}
		if q.Kind != domain.QueryCatalog && q.Kind != domain.QueryProduct {
			return nil, fmt.Errorf("%w: catalog entry %d has kind %q", domain.ErrInvalidInput, i+1, q.Kind)
		}
		if q.Name == "" {
			q.Name = q.URL
		}
		queries = append(queries, q)
	}
	return queries, nil
}

func (s *SettingsService) getSelectors(defaults domain.Selectors) domain.Selectors {
	get := func(key, def string) string {
		return s.getString(prefixSelectors+key, def)
	}
	return domain.Selectors{
		Card:              get("card", defaults.Card),
		TitleLink:         get("title_link", defaults.TitleLink),
		Price:             get("price", defaults.Price),
		Image:             get("image", defaults.Image),
		CartButton:        get("cart_button", defaults.CartButton),
		SoldOutText:       get("sold_out_text", defaults.SoldOutText),
		PagePrice:         get("page_price", defaults.PagePrice),
		PagePriceFallback: get("page_price_fallback", defaults.PagePriceFallback),
		PageTitle:         get("page_title", defaults.PageTitle),
	}
}

func selectorValues(sel domain.Selectors) map[string]string {
	return map[string]string{
		"card":                sel.Card,
		"title_link":          sel.TitleLink,
		"price":               sel.Price,
		"image":               sel.Image,
		"cart_button":         sel.CartButton,
		"sold_out_text":       sel.SoldOutText,
		"page_price":          sel.PagePrice,
		"page_price_fallback": sel.PagePriceFallback,
		"page_title":          sel.PageTitle,
	}
}

func (s *SettingsService) webhookURL() string {
	if url := strings.TrimSpace(s.getenv(EnvWebhookURL)); url != "" {
		return url
	}
	return strings.TrimSpace(s.getenv(EnvLegacyWebhookURL))
}

func (s *SettingsService) emailSettings() domain.EmailSettings {
	email := domain.EmailSettings{
		Host:     s.getenv(EnvSMTPHost),
		Port:     587,
		Username: s.getenv(EnvSMTPUsername),
		Password: s.getenv(EnvSMTPPassword),
		From:     s.getenv(EnvSMTPFrom),
	}
	if port := s.getenv(EnvSMTPPort); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p > 0 {
			email.Port = p
		}
	}
	for _, to := range strings.Split(s.getenv(EnvSMTPTo), ",") {
		if to = strings.TrimSpace(to); to != "" {
			email.To = append(email.To, to)
		}
	}
	return email
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d < 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getSourceMode(defaultVal domain.SourceMode) domain.SourceMode {
	val := s.configStore.GetString(keySourceMode)
	if val == "" {
		return defaultVal
	}
	mode := domain.SourceMode(val)
	if !mode.IsValid() {
		return defaultVal
	}
	return mode
}

func tableString(t map[string]any, key string) string {
	s, _ := t[key].(string)
	return strings.TrimSpace(s)
}

func tableInt(t map[string]any, key string) int {
	switch v := t[key].(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}
