package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/stockwatch/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View the effective settings and change the source mode.

Notification secrets are read from the environment (or a .env file) and
are never written to the config file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsModeCmd = &cobra.Command{
	Use:   "mode [catalog|product]",
	Short: "Set source mode",
	Long: `Set which queries a reconciliation pass observes.

Available modes:
  catalog - read the configured [[catalog]] listing grids
  product - read each tracked product's own page`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSettingsMode,
}

var settingsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write default settings to the config file",
	Args:  cobra.NoArgs,
	RunE:  runSettingsInit,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsModeCmd)
	settingsCmd.AddCommand(settingsInitCmd)
	rootCmd.AddCommand(settingsCmd)
}

// allSourceModes lists modes in menu order.
var allSourceModes = []domain.SourceMode{domain.SourceModeCatalog, domain.SourceModeProduct}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Ledger]")
	if settings.Ledger.Path != "" {
		cmd.Printf("  Path: %s\n", settings.Ledger.Path)
	} else {
		cmd.Printf("  Path: (default)\n")
	}
	cmd.Println()

	cmd.Println("[Source]")
	cmd.Printf("  Mode: %s\n", settings.Source.Mode.Description())
	if settings.Source.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Source.BaseURL)
	}
	cmd.Printf("  Concurrency: %d\n", settings.Source.ClampedConcurrency())
	cmd.Printf("  Requests per second: %g\n", settings.Source.RequestsPerSecond)
	cmd.Printf("  Timeout: %s\n", settings.Source.Timeout)
	cmd.Printf("  Catalog queries: %d\n", len(settings.Source.Catalog))
	for _, q := range settings.Source.Catalog {
		cmd.Printf("    - %s (%s, %d pages, %s)\n", q.Name, q.Kind, q.PageCount(), q.DefaultStatus)
	}
	cmd.Println()

	cmd.Println("[Alerts]")
	cmd.Printf("  Drop threshold: %.0f%%\n", settings.Alerts.DropThreshold*100)
	if settings.Alerts.NotifyPriceRises {
		cmd.Printf("  Rise threshold: %.0f%%\n", settings.Alerts.RiseThreshold*100)
	} else {
		cmd.Printf("  Price rises: not notified\n")
	}
	cmd.Println()

	cmd.Println("[Dispatch]")
	cmd.Printf("  Interval: %s\n", settings.Dispatch.Interval)
	if settings.Dispatch.WebhookURL != "" {
		cmd.Printf("  Webhook: %s\n", maskSecret(settings.Dispatch.WebhookURL))
	} else {
		cmd.Printf("  Webhook: (not set)\n")
	}
	if settings.Dispatch.Email.IsConfigured() {
		cmd.Printf("  Email: %s via %s:%d\n", strings.Join(settings.Dispatch.Email.To, ", "),
			settings.Dispatch.Email.Host, settings.Dispatch.Email.Port)
	} else {
		cmd.Printf("  Email: (not set)\n")
	}
	cmd.Println()

	cmd.Println("[Scheduler]")
	task := settings.Scheduler.GetTaskConfig(domain.TaskIDLedgerReconcile)
	cmd.Printf("  Enabled: %t\n", settings.Scheduler.Enabled)
	cmd.Printf("  Reconcile: every %s (enabled: %t)\n", task.Interval, task.Enabled)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsMode(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	var selected domain.SourceMode
	if len(args) == 1 {
		selected = domain.SourceMode(args[0])
		if !selected.IsValid() {
			return fmt.Errorf("invalid source mode: %s", args[0])
		}
	} else {
		cmd.Println("Select Source Mode")
		cmd.Println("------------------")
		for i, mode := range allSourceModes {
			cmd.Printf("  %d. %s\n", i+1, mode.Description())
		}
		cmd.Print("\nEnter choice: ")
		idx := parseChoice(readLine(bufio.NewReader(cmd.InOrStdin())), len(allSourceModes), 0)
		if idx == 0 {
			return errors.New("invalid selection")
		}
		selected = allSourceModes[idx-1]
	}

	if err := settingsService.SetSourceMode(selected); err != nil {
		return fmt.Errorf("failed to set source mode: %w", err)
	}
	cmd.Printf("Source mode set to: %s\n", selected.Description())

	if selected == domain.SourceModeCatalog {
		settings, _ := settingsService.Get() //nolint:errcheck // Best-effort check
		if settings != nil && len(settings.Source.Catalog) == 0 {
			cmd.Println("\nNote: add [[catalog]] entries to the config file before running a pass.")
		}
	}
	return nil
}

func runSettingsInit(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	defaults := settingsService.GetDefaults()
	if err := settingsService.Save(&defaults); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	cmd.Println("Default settings written.")
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// maskSecret keeps the first and last four characters.
func maskSecret(secret string) string {
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
