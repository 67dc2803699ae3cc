package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/cleanscore/internal/contract"
	"github.com/huangsam/cleanscore/internal/httpapi"
	"github.com/spf13/cobra"
)

// serveCmd exposes stored analyses over HTTP.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve stored analyses over a read-only JSON API.",
	Long: `Serve stored analyses for dashboards.

Routes:
  GET /health
  GET /api/v1/analysis?limit=&language=
  GET /api/v1/analysis/{commitID}
  GET /api/v1/statistics

Examples:
  cleanscore serve --addr :3000`,
	Args:    cobra.NoArgs,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		router := httpapi.NewRouter(newOrchestrator(), storeManager.GetAnalysisStore(), cfg.ListLimit, logger)
		if err := httpapi.Serve(ctx, cfg.ServeAddr, router, logger); err != nil {
			contract.LogFatal("HTTP server failed", err)
		}
	},
}
