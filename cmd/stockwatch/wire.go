package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	configfile "github.com/custodia-labs/stockwatch/internal/adapters/driven/config/file"
	"github.com/custodia-labs/stockwatch/internal/adapters/driven/notify"
	"github.com/custodia-labs/stockwatch/internal/adapters/driven/source/storefront"
	ledgerfile "github.com/custodia-labs/stockwatch/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/stockwatch/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/stockwatch/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/stockwatch/internal/adapters/driving/cli"
	"github.com/custodia-labs/stockwatch/internal/core/ports/driving"
	"github.com/custodia-labs/stockwatch/internal/core/services"
)

// DefaultLedgerFile is the ledger file name inside the config directory.
const DefaultLedgerFile = "products.json"

// bootstrap wires adapters and services from the global flags.
func bootstrap(opts cli.Options) (*cli.Services, error) {
	configDir := opts.ConfigDir
	if configDir == "" {
		dir, err := configfile.DefaultConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config directory: %w", err)
		}
		configDir = dir
	}

	configStore, err := configfile.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, nil)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	ledger, err := ledgerfile.NewStore(
		resolveLedgerPath(opts.LedgerPath, settings.Ledger.Path, configDir),
		ledgerfile.WithBaseURL(settings.Source.BaseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	state, err := sqlite.NewStore(filepath.Join(configDir, "data"))
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}

	source := storefront.NewSource(settings.Source)
	reconciler := services.NewReconciler(settings.Alerts)
	dispatcher := services.NewAlertDispatcher(notify.FromSettings(settings.Dispatch), settings.Dispatch.Interval)
	passConfig := services.PassConfig{
		Mode:    settings.Source.Mode,
		Catalog: settings.Source.Catalog,
	}

	pass := services.NewPassOrchestrator(ledger, source, reconciler, dispatcher,
		state.PassStore(), state.AlertLog(), passConfig)

	dryRun := func(out io.Writer) (driving.PassRunner, error) {
		products, err := ledger.Load(context.Background())
		if err != nil {
			return nil, err
		}
		copyStore := memory.NewLedgerStore(products)
		logDispatcher := services.NewAlertDispatcher(notify.NewLogSink(out), 0)
		return services.NewPassOrchestrator(copyStore, source, services.NewReconciler(settings.Alerts),
			logDispatcher, nil, nil, passConfig), nil
	}

	return &cli.Services{
		PassRunner: pass,
		Importer:   services.NewImportService(ledger, source),
		Catalog:    services.NewCatalogService(ledger),
		Settings:   settingsService,
		Scheduler:  services.NewScheduler(settings.Scheduler, state.SchedulerStore(), pass),
		Passes:     state.PassStore(),
		Alerts:     state.AlertLog(),
		Watcher:    ledger,
		DryRun:     dryRun,
		Close:      state.Close,
	}, nil
}

// resolveLedgerPath picks the flag, then the configured path, then the
// default. Relative configured paths are taken from the config directory.
func resolveLedgerPath(flagPath, configured, configDir string) string {
	switch {
	case flagPath != "":
		return flagPath
	case configured == "":
		return filepath.Join(configDir, DefaultLedgerFile)
	case filepath.IsAbs(configured):
		return configured
	default:
		return filepath.Join(configDir, configured)
	}
}
