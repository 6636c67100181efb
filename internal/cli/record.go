package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/fitsweep/internal/config"
	"github.com/roach88/fitsweep/internal/store"
	"github.com/roach88/fitsweep/internal/sweep"
)

// signalContext is cancelled on Ctrl-C or SIGTERM. Runs stop at the next
// file boundary.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// recordRun writes the metrics textfile and the ledger entry when they
// are configured. It runs even after cancellation so partial runs are kept.
func recordRun(ctx context.Context, cfg *config.Config, r *sweep.Report, tolerance time.Duration, logger *slog.Logger) error {
	ctx = context.WithoutCancel(ctx)

	if cfg.MetricsFile != "" {
		m := sweep.NewMetrics()
		m.Observe(r)
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			return WrapExitError(ExitFailure, "failed to write metrics", err)
		}
		logger.Debug("metrics written", "path", cfg.MetricsFile, "run_id", r.RunID)
	}

	if cfg.Ledger != "" {
		st, err := store.Open(cfg.Ledger)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open ledger", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing ledger", "error", closeErr)
			}
		}()
		if err := st.RecordReport(ctx, r, tolerance); err != nil {
			return WrapExitError(ExitFailure, "failed to record run", err)
		}
		logger.Debug("run recorded", "path", cfg.Ledger, "run_id", r.RunID)
	}
	return nil
}

// runError maps a run-level failure to an exit code.
func runError(message string, err error) error {
	if sweep.Classify(err) == sweep.KindFatalConfig {
		return WrapExitError(ExitCommandError, message, err)
	}
	return WrapExitError(ExitFailure, message, err)
}
