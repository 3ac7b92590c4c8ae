package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	historyLimit  int
	historyAlerts bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent reconciliation passes",
	Long: `Lists recorded passes, most recent first.
With --alerts the recently raised alerts are listed instead.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "maximum number of entries")
	historyCmd.Flags().BoolVar(&historyAlerts, "alerts", false, "list raised alerts")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if historyAlerts {
		return runAlertHistory(cmd)
	}
	if passHistory == nil {
		return errors.New("pass history not configured")
	}

	passes, err := passHistory.List(context.Background(), historyLimit)
	if err != nil {
		return fmt.Errorf("list passes: %w", err)
	}
	if len(passes) == 0 {
		cmd.Println("No passes recorded.")
		return nil
	}

	for i := range passes {
		p := &passes[i]
		outcome := styles.InStock.Render("ok")
		if !p.Succeeded() {
			outcome = styles.Failed.Render("failed")
		}
		cmd.Printf("%s  %-6s %d processed, %d skipped, %d unmatched, %d alerts\n",
			p.StartedAt.Local().Format("2006-01-02 15:04:05"), outcome,
			p.Processed, p.Skipped, p.Unmatched, p.Alerted)
		if p.Error != "" {
			cmd.Println(styles.Muted.Render("    " + p.Error))
		}
	}
	return nil
}

func runAlertHistory(cmd *cobra.Command) error {
	if alertHistory == nil {
		return errors.New("alert log not configured")
	}

	alerts, err := alertHistory.Recent(context.Background(), historyLimit)
	if err != nil {
		return fmt.Errorf("list alerts: %w", err)
	}
	if len(alerts) == 0 {
		cmd.Println("No alerts recorded.")
		return nil
	}

	for i := range alerts {
		a := &alerts[i]
		name := a.ProductName
		if name == "" {
			name = a.ProductURL
		}
		cmd.Printf("%s  %-10s %s\n", a.RaisedAt.Local().Format("2006-01-02 15:04"), a.Kind, name)
	}
	return nil
}
