package cmd

import (
	"fmt"
	"strings"

	"github.com/huangsam/cleanscore/core"
	"github.com/huangsam/cleanscore/internal/contract"
	"github.com/huangsam/cleanscore/internal/outwriter"
	"github.com/huangsam/cleanscore/schema"
	"github.com/spf13/cobra"
)

// showCmd prints one stored analysis.
var showCmd = &cobra.Command{
	Use:   "show <commit>",
	Short: "Print the stored analysis of a commit.",
	Long: `Print the stored analysis of a commit with its file ratings and suggestions.

Abbreviated hashes are expanded through the repository given by --repo.

Examples:
  cleanscore show a1b2c3d4
  cleanscore show HEAD~1 --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		analysis, err := newOrchestrator().FindAnalysis(rootCtx, args[0])
		if err != nil {
			contract.LogFatal("Cannot read stored analysis", err)
		}
		if analysis == nil {
			contract.LogFatal("Cannot show analysis", fmt.Errorf("no analysis stored for commit %s", args[0]))
		}
		if err := outwriter.NewOutWriter().WriteAnalysis(analysis, cfg); err != nil {
			contract.LogFatal("Cannot write analysis", err)
		}
	},
}

// listCmd prints stored analyses.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored commit analyses, newest first.",
	Long: `List stored commit analyses, newest first.

Examples:
  cleanscore list --limit 10
  cleanscore list --language go --output csv --output-file analyses.csv`,
	Args:    cobra.NoArgs,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		filter := schema.ListFilter{Limit: cfg.ListLimit, Language: cfg.Language}
		summaries, err := storeManager.GetAnalysisStore().List(rootCtx, filter)
		if err != nil {
			contract.LogFatal("Cannot list analyses", err)
		}
		if err := outwriter.NewOutWriter().WriteSummaries(summaries, cfg); err != nil {
			contract.LogFatal("Cannot write analyses", err)
		}
	},
}

// statsCmd prints statistics over stored analyses.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize every stored analysis.",
	Long: `Summarize every stored analysis: average, best and worst notes, commits per
quality tier and per language.

Examples:
  cleanscore stats
  cleanscore stats --output json`,
	Args:    cobra.NoArgs,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		summaries, err := storeManager.GetAnalysisStore().List(rootCtx, schema.ListFilter{})
		if err != nil {
			contract.LogFatal("Cannot list analyses", err)
		}
		if lang := strings.TrimSpace(cfg.Language); lang != "" {
			summaries = filterLanguage(summaries, lang)
		}
		if err := outwriter.NewOutWriter().WriteStatistics(core.BuildStatistics(summaries), cfg); err != nil {
			contract.LogFatal("Cannot write statistics", err)
		}
	},
}

func filterLanguage(summaries []schema.AnalysisSummary, lang string) []schema.AnalysisSummary {
	var out []schema.AnalysisSummary
	for _, s := range summaries {
		if strings.EqualFold(s.Language, lang) {
			out = append(out, s)
		}
	}
	return out
}
