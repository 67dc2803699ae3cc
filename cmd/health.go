package cmd

import (
	"errors"

	"github.com/huangsam/cleanscore/internal/contract"
	"github.com/huangsam/cleanscore/internal/outwriter"
	"github.com/spf13/cobra"
)

// healthCmd checks the model server, the store and the repository.
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the model server, the store and the repository.",
	Long: `Run the checks a scan cycle depends on:
- Ollama is reachable and lists the configured model
- The analysis store answers a status query
- The repository path resolves to a Git work tree

Exits with a non-zero status when any check fails.

Examples:
  cleanscore health
  cleanscore health --ollama-url http://gpu-box:11434 --model codellama`,
	Args: cobra.NoArgs,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return loadSettings()
	},
	Run: func(_ *cobra.Command, _ []string) {
		if err := contract.ProcessAndValidate(rootCtx, cfg, contract.NewLocalGitClient(), input); err != nil {
			cfg.RepoPath = input.RepoPathStr
		}
		storeErr := initStore(rootCtx)

		report := newOrchestrator().Health(rootCtx)
		if storeErr != nil {
			report.StoreError = storeErr.Error()
			report.Store.Backend = string(cfg.StoreBackend)
		}
		if err := outwriter.NewOutWriter().WriteHealth(report, cfg); err != nil {
			contract.LogFatal("Cannot write health report", err)
		}
		if !report.Healthy() {
			contract.LogFatal("Health check failed", errors.New("one or more checks did not pass"))
		}
	},
}
