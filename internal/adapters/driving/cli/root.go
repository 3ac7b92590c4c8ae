// Package cli implements the stockwatch command line.
package cli

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/stockwatch/internal/core/ports/driving"
	"github.com/custodia-labs/stockwatch/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Global flags.
var (
	configDir  string
	ledgerPath string
	verbose    bool
)

// Services wired by the composition root.
var (
	passRunner      driving.PassRunner
	importService   driving.ImportService
	catalogService  driving.CatalogService
	settingsService driving.SettingsService
	scheduler       driving.Scheduler
	passHistory     driving.PassHistory
	alertHistory    driving.AlertHistory
	catalogWatcher  driving.CatalogWatcher

	// dryRunner builds a pass runner that reconciles an in-memory copy of
	// the ledger and writes alerts to out.
	dryRunner func(out io.Writer) (driving.PassRunner, error)

	closeServices func() error
)

// Options are the resolved global flags handed to the bootstrap function.
type Options struct {
	ConfigDir  string
	LedgerPath string
}

// Services holds everything the commands need.
type Services struct {
	PassRunner driving.PassRunner
	Importer   driving.ImportService
	Catalog    driving.CatalogService
	Settings   driving.SettingsService
	Scheduler  driving.Scheduler
	Passes     driving.PassHistory
	Alerts     driving.AlertHistory
	Watcher    driving.CatalogWatcher
	DryRun     func(out io.Writer) (driving.PassRunner, error)

	// Close releases resources such as database handles.
	Close func() error
}

// BootstrapFunc builds services from the global flags.
type BootstrapFunc func(opts Options) (*Services, error)

var bootstrap BootstrapFunc

var rootCmd = &cobra.Command{
	Use:   "stockwatch",
	Short: "Track storefront stock and prices",
	Long: `stockwatch keeps a ledger of storefront products, reconciles it against
fresh listings and sends alerts on restocks and price drops.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.stockwatch)")
	rootCmd.PersistentFlags().StringVar(&ledgerPath, "ledger", "", "ledger file path (overrides ledger.path)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug output")
}

// SetBootstrap registers the function that wires services before a command runs.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetServices installs services directly.
func SetServices(s *Services) {
	passRunner = s.PassRunner
	importService = s.Importer
	catalogService = s.Catalog
	settingsService = s.Settings
	scheduler = s.Scheduler
	passHistory = s.Passes
	alertHistory = s.Alerts
	catalogWatcher = s.Watcher
	dryRunner = s.DryRun
	closeServices = s.Close
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// setup enables verbose logging, loads .env secrets and wires services.
func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if err := loadEnv(configDir); err != nil {
		return err
	}

	if bootstrap == nil || !needsServices(cmd) {
		return nil
	}

	services, err := bootstrap(Options{ConfigDir: configDir, LedgerPath: ledgerPath})
	if err != nil {
		return err
	}
	SetServices(services)
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if closeServices == nil {
		return nil
	}
	fn := closeServices
	closeServices = nil
	return fn()
}

// needsServices reports whether cmd touches the ledger or settings.
func needsServices(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "help", "completion":
		return false
	default:
		return true
	}
}

// loadEnv reads .env from the working directory and then from the config
// directory. Variables already set in the environment win.
func loadEnv(dir string) error {
	candidates := []string{".env"}
	if dir != "" {
		candidates = append(candidates, filepath.Join(dir, ".env"))
	}
	for _, path := range candidates {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}
