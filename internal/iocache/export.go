package iocache

import (
	"context"
	"errors"
	"fmt"

	"github.com/huangsam/cleanscore/internal/contract"
	"github.com/huangsam/cleanscore/internal/parquet"
	"github.com/huangsam/cleanscore/schema"
)

// ExportResult lists the files written by ExecuteAnalysisExport.
type ExportResult struct {
	Backend         string
	AnalysesFile    string
	FileRatingsFile string
	SuggestionsFile string
	Analyses        int
	FileRatings     int
	Suggestions     int
}

// ExecuteAnalysisExport writes every stored analysis to three Parquet files
// named after outputFile.
func ExecuteAnalysisExport(ctx context.Context, store contract.AnalysisStore, outputFile string) (*ExportResult, error) {
	if outputFile == "" {
		return nil, errors.New("--output-file is required for export command")
	}

	status, err := store.GetStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get store status: %w", err)
	}
	if status.TotalAnalyses == 0 {
		return nil, errors.New("no analysis data found to export")
	}

	summaries, err := store.List(ctx, schema.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve analyses: %w", err)
	}
	files, err := store.GetAllFileRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve file ratings: %w", err)
	}

	var suggestions []parquet.Suggestion
	for _, s := range summaries {
		if s.SuggestionCount == 0 {
			continue
		}
		analysis, err := store.GetByID(ctx, s.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve analysis %s: %w", s.ID, err)
		}
		if analysis != nil {
			suggestions = append(suggestions, parquet.ConvertSuggestions(analysis.CommitID, analysis.Suggestions())...)
		}
	}

	result := &ExportResult{
		Backend:         status.Backend,
		AnalysesFile:    outputFile + ".commit_analyses.parquet",
		FileRatingsFile: outputFile + ".file_ratings.parquet",
		SuggestionsFile: outputFile + ".suggestions.parquet",
		Analyses:        len(summaries),
		FileRatings:     len(files),
		Suggestions:     len(suggestions),
	}

	if err := parquet.WriteCommitAnalysesParquet(parquet.ConvertAnalysisSummaries(summaries), result.AnalysesFile); err != nil {
		return nil, fmt.Errorf("failed to write commit analyses: %w", err)
	}
	if err := parquet.WriteFileRatingsParquet(parquet.ConvertFileRatingRecords(files), result.FileRatingsFile); err != nil {
		return nil, fmt.Errorf("failed to write file ratings: %w", err)
	}
	if err := parquet.WriteSuggestionsParquet(suggestions, result.SuggestionsFile); err != nil {
		return nil, fmt.Errorf("failed to write suggestions: %w", err)
	}
	return result, nil
}
