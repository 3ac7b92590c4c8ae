package cli

import (
	"bytes"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stockwatch/internal/core/domain"
	"github.com/custodia-labs/stockwatch/internal/core/ports/driving"
)

func testSummary() *domain.PassSummary {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &domain.PassSummary{
		RunID:     "run-1",
		StartedAt: start,
		EndedAt:   start.Add(1500 * time.Millisecond),
		Observed:  12,
		Processed: 9,
		Skipped:   2,
		Unmatched: 1,
		Alerted:   3,
		Delivered: 3,
		Saved:     true,
	}
}

func TestRunCmd_Use(t *testing.T) {
	assert.Equal(t, "run", runCmd.Use)
	assert.NotNil(t, runCmd.Flags().Lookup("dry-run"))
}

func TestRunCmd_PrintsSummary(t *testing.T) {
	runner := &mockPassRunner{summary: testSummary()}
	setupServices(t, &Services{PassRunner: runner})

	out, err := executeCommand(t, "run")

	require.NoError(t, err)
	assert.Equal(t, 1, runner.calls)
	assert.Contains(t, out, "Pass run-1 finished in 1.5s")
	assert.Contains(t, out, "Processed: 9")
	assert.Contains(t, out, "Skipped:   2")
	assert.Contains(t, out, "Unmatched: 1")
	assert.Contains(t, out, "Alerted:   3 (3 delivered, 0 failed)")
	assert.NotContains(t, out, "Ledger unchanged")
}

func TestRunCmd_ServiceNotConfigured(t *testing.T) {
	setupServices(t, &Services{})

	_, err := executeCommand(t, "run")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "pass service not configured")
}

func TestRunCmd_PassInProgress(t *testing.T) {
	setupServices(t, &Services{PassRunner: &mockPassRunner{err: domain.ErrPassInProgress}})

	_, err := executeCommand(t, "run")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "another pass is already running")
}

func TestRunCmd_AbortedPassStillPrintsSummary(t *testing.T) {
	summary := testSummary()
	summary.Saved = false
	summary.Error = "store unavailable"
	storeErr := fmt.Errorf("save ledger: %w", domain.ErrStoreUnavailable)
	setupServices(t, &Services{PassRunner: &mockPassRunner{summary: summary, err: storeErr}})

	out, err := executeCommand(t, "run")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Contains(t, out, "Ledger unchanged")
}

func TestRunCmd_DryRun(t *testing.T) {
	live := &mockPassRunner{summary: testSummary()}
	dry := &mockPassRunner{summary: testSummary()}
	var dryOut io.Writer
	setupServices(t, &Services{
		PassRunner: live,
		DryRun: func(out io.Writer) (driving.PassRunner, error) {
			dryOut = out
			return dry, nil
		},
	})

	out, err := executeCommand(t, "run", "--dry-run")

	require.NoError(t, err)
	assert.Equal(t, 0, live.calls)
	assert.Equal(t, 1, dry.calls)
	assert.Contains(t, out, "Dry run run-1")
	_, isBuffer := dryOut.(*bytes.Buffer)
	assert.True(t, isBuffer, "dry run alerts go to the command output")
}

func TestRunCmd_DryRunNotConfigured(t *testing.T) {
	setupServices(t, &Services{PassRunner: &mockPassRunner{summary: testSummary()}})

	_, err := executeCommand(t, "run", "--dry-run")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "dry run not configured")
}
