package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/stockwatch/internal/logger"
	"github.com/custodia-labs/stockwatch/internal/metrics"
)

var scheduleMetricsAddr string

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run passes on a schedule",
	Long: `Runs the scheduler in the foreground until interrupted. The ledger
reconcile task runs at scheduler.ledger_reconcile.interval.

With --metrics-addr, prometheus metrics are served at /metrics.`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().StringVar(&scheduleMetricsAddr, "metrics-addr", "", "serve /metrics on this address, e.g. :9090")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	if scheduler == nil {
		return errors.New("scheduler not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if scheduleMetricsAddr != "" {
		srv := newMetricsServer(scheduleMetricsAddr)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		cmd.Printf("Serving metrics on %s/metrics\n", scheduleMetricsAddr)
	}

	cmd.Println("Scheduler running. Press Ctrl+C to stop.")

	err := scheduler.Start(ctx)
	if stopErr := scheduler.Stop(); stopErr != nil {
		logger.Warn("scheduler stop: %v", stopErr)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("scheduler failed: %w", err)
	}

	cmd.Println("Scheduler stopped.")
	return nil
}

func newMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
