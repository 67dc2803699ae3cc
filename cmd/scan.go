package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/huangsam/cleanscore/internal/contract"
	"github.com/huangsam/cleanscore/internal/outwriter"
	"github.com/huangsam/cleanscore/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// scanCmd analyzes recent commits, once or on a schedule.
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Analyze recent commits of the repository.",
	Long: `Check that the model server is reachable, then analyze commits authored within
the lookback window, newest first, up to --scan-limit commits per cycle.

A failing commit is reported and does not stop the cycle. With --watch the scan
repeats every --interval until interrupted.

Examples:
  # Analyze up to 5 commits of the last week
  cleanscore scan

  # Keep the store up to date every 30 minutes
  cleanscore scan --watch --interval 30m --lookback "2 days"`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		orch := newOrchestrator()
		ow := outwriter.NewOutWriter()

		if !viper.GetBool("watch") {
			start := time.Now()
			report, err := orch.AnalyzeRecent(rootCtx)
			if err != nil {
				contract.LogFatal("Scan failed", err)
			}
			if err := ow.WriteScanReport(report, cfg, time.Since(start)); err != nil {
				contract.LogFatal("Cannot write scan report", err)
			}
			return
		}

		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		err := orch.Watch(ctx, cfg.Interval, func(report *schema.ScanReport, err error) {
			if err != nil {
				contract.LogWarn("Scan cycle failed", err)
				return
			}
			if err := ow.WriteScanReport(report, cfg, 0); err != nil {
				contract.LogWarn("Cannot write scan report", err)
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			contract.LogFatal("Watch stopped", err)
		}
		logger.Info("watch stopped")
	},
}
