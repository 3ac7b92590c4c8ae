package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/stockwatch/internal/core/domain"
)

var runDryRun bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one reconciliation pass",
	Long: `Observes the storefront, reconciles the ledger and dispatches alerts.

With --dry-run the pass works on an in-memory copy of the ledger and
alerts are printed instead of sent.`,
	Args: cobra.NoArgs,
	RunE: runPass,
}

func init() {
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "reconcile a copy of the ledger and print alerts")
	rootCmd.AddCommand(runCmd)
}

func runPass(cmd *cobra.Command, _ []string) error {
	runner := passRunner
	if runDryRun {
		if dryRunner == nil {
			return errors.New("dry run not configured")
		}
		r, err := dryRunner(cmd.OutOrStdout())
		if err != nil {
			return fmt.Errorf("prepare dry run: %w", err)
		}
		runner = r
	}
	if runner == nil {
		return errors.New("pass service not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := runner.Run(ctx)
	if errors.Is(err, domain.ErrPassInProgress) {
		return errors.New("another pass is already running")
	}
	if summary != nil {
		printSummary(cmd, summary)
	}
	if err != nil {
		return fmt.Errorf("pass failed: %w", err)
	}
	return nil
}

// printSummary writes the pass counters.
func printSummary(cmd *cobra.Command, s *domain.PassSummary) {
	label := "Pass"
	if runDryRun {
		label = "Dry run"
	}
	cmd.Printf("%s %s finished in %s\n", label, s.RunID, s.Duration().Round(time.Millisecond))
	cmd.Printf("  Observed:  %d (%d fetch errors)\n", s.Observed, s.FetchErrors)
	cmd.Printf("  Processed: %d\n", s.Processed)
	cmd.Printf("  Skipped:   %d\n", s.Skipped)
	cmd.Printf("  Unmatched: %d\n", s.Unmatched)
	cmd.Printf("  Alerted:   %d (%d delivered, %d failed)\n", s.Alerted, s.Delivered, s.DispatchFailed)
	if !s.Saved {
		cmd.Println("  Ledger unchanged")
	}
}
