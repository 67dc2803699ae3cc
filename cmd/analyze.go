package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/cleanscore/internal/contract"
	"github.com/huangsam/cleanscore/internal/outwriter"
	"github.com/huangsam/cleanscore/schema"
	"github.com/spf13/cobra"
)

// analyzeCmd rates one or more commits.
var analyzeCmd = &cobra.Command{
	Use:   "analyze <commit>...",
	Short: "Rate the source files changed by one or more commits.",
	Long: `Send every source file changed by a commit to the model and store the verdict.

For each file the model scores five clean code criteria from 1 to 10:
- Variable naming
- Function sizes
- No needs for comments
- Method cohesion
- Dead code

The commit rating is the per-criterion average of its files. Commits that were
already analyzed are returned from the store without calling the model. A single
failing file aborts its commit and nothing is stored for it.

Examples:
  # Rate the latest commit
  cleanscore analyze HEAD

  # Rate two commits of another repository and export as JSON
  cleanscore analyze --repo ../service a1b2c3d 9f8e7d6 --output json`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		orch := newOrchestrator()
		start := time.Now()

		var outcomes []schema.AnalysisOutcome
		var failed []error
		for _, commitID := range args {
			outcome, err := orch.AnalyzeCommit(rootCtx, commitID)
			if err != nil {
				contract.LogWarn(fmt.Sprintf("Cannot analyze commit %s", commitID), err)
				failed = append(failed, err)
				continue
			}
			outcomes = append(outcomes, *outcome)
		}

		if len(outcomes) > 0 {
			if err := outwriter.NewOutWriter().WriteOutcomes(outcomes, cfg, time.Since(start)); err != nil {
				contract.LogFatal("Cannot write analysis results", err)
			}
		}
		if len(failed) > 0 {
			contract.LogFatal("Analysis failed", errors.Join(failed...))
		}
	},
}
