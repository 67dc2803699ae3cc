// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/cleanscore/internal/contract"
	"github.com/huangsam/cleanscore/schema"
)

// OutWriter provides a unified interface for all output operations.
// Each method honors cfg.Output, cfg.OutputFile and cfg.Precision.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteOutcomes prints the results of analyzing one or more commits.
func (ow *OutWriter) WriteOutcomes(outcomes []schema.AnalysisOutcome, cfg *contract.Config, duration time.Duration) error {
	return WriteOutcomeResults(outcomes, cfg, duration)
}

// WriteAnalysis prints one stored analysis.
func (ow *OutWriter) WriteAnalysis(analysis *schema.CommitAnalysis, cfg *contract.Config) error {
	outcome := schema.AnalysisOutcome{CommitID: analysis.CommitID, Status: schema.StatusCompleted, Analysis: analysis}
	return WriteOutcomeResults([]schema.AnalysisOutcome{outcome}, cfg, 0)
}

// WriteSummaries prints stored analyses as a list.
func (ow *OutWriter) WriteSummaries(summaries []schema.AnalysisSummary, cfg *contract.Config) error {
	return WriteSummaryResults(summaries, cfg)
}

// WriteStatistics prints the statistics of stored analyses.
func (ow *OutWriter) WriteStatistics(stats schema.Statistics, cfg *contract.Config) error {
	return WriteStatisticsResults(stats, cfg)
}

// WriteScanReport prints the outcome of one scan cycle.
func (ow *OutWriter) WriteScanReport(report *schema.ScanReport, cfg *contract.Config, duration time.Duration) error {
	return WriteScanResults(report, cfg, duration)
}

// WriteHealth prints the health checks.
func (ow *OutWriter) WriteHealth(report schema.HealthReport, cfg *contract.Config) error {
	return WriteHealthResults(report, cfg)
}

// WriteStoreStatus prints analysis store status information.
func (ow *OutWriter) WriteStoreStatus(status schema.StoreStatus, cfg *contract.Config) error {
	return WriteStoreStatusResults(status, cfg)
}
