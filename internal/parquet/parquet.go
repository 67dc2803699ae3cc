// Package parquet exports stored commit analyses to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/cleanscore/schema"
	"github.com/parquet-go/parquet-go"
)

// CommitAnalysis is one row of the commit analyses export.
// It maps to the cleanscore_commit_analyses table.
type CommitAnalysis struct {
	ID           string    `parquet:"id,snappy"`
	CommitID     string    `parquet:"commit_id,snappy"`
	Author       string    `parquet:"author,snappy"`
	Email        string    `parquet:"email,snappy"`
	CommitDate   time.Time `parquet:"commit_date,snappy"`
	AnalysisDate time.Time `parquet:"analysis_date,snappy"`
	Language     string    `parquet:"language,snappy"`
	AddedLines   int32     `parquet:"added_lines,snappy"`
	RemovedLines int32     `parquet:"removed_lines,snappy"`

	// Note and Quality are absent for commits without any rated file.
	Note    *float64 `parquet:"note,optional,snappy"`
	Quality *string  `parquet:"quality,optional,snappy"`

	VariableNaming  int32 `parquet:"variable_naming,snappy"`
	FunctionSizes   int32 `parquet:"function_sizes,snappy"`
	NoNeedsComments int32 `parquet:"no_needs_comments,snappy"`
	MethodCohesion  int32 `parquet:"method_cohesion,snappy"`
	DeadCode        int32 `parquet:"dead_code,snappy"`

	FileCount       int32 `parquet:"file_count,snappy"`
	SuggestionCount int32 `parquet:"suggestion_count,snappy"`
}

// FileRating is one row of the file ratings export.
// It maps to the cleanscore_file_ratings table.
type FileRating struct {
	CommitID        string    `parquet:"commit_id,snappy"`
	FilePath        string    `parquet:"file_path,snappy"`
	Language        string    `parquet:"language,snappy"`
	AddedLines      int32     `parquet:"added_lines,snappy"`
	RemovedLines    int32     `parquet:"removed_lines,snappy"`
	VariableNaming  int32     `parquet:"variable_naming,snappy"`
	FunctionSizes   int32     `parquet:"function_sizes,snappy"`
	NoNeedsComments int32     `parquet:"no_needs_comments,snappy"`
	MethodCohesion  int32     `parquet:"method_cohesion,snappy"`
	DeadCode        int32     `parquet:"dead_code,snappy"`
	Note            float64   `parquet:"note,snappy"`
	Quality         string    `parquet:"quality,snappy"`
	SuggestionCount int32     `parquet:"suggestion_count,snappy"`
	AnalysisDate    time.Time `parquet:"analysis_date,snappy"`
}

// Suggestion is one improvement hint attached to a file of a commit.
type Suggestion struct {
	CommitID       string    `parquet:"commit_id,snappy"`
	FileReference  string    `parquet:"file_reference,snappy"`
	Title          string    `parquet:"title,snappy"`
	Description    string    `parquet:"description,snappy"`
	Priority       string    `parquet:"priority,snappy"`
	Category       string    `parquet:"category,snappy"`
	Difficulty     string    `parquet:"difficulty,snappy"`
	LastUpdate     time.Time `parquet:"last_update,snappy"`
	StudyResources []string  `parquet:"study_resources"`
}

// WriteCommitAnalysesParquet writes commit analysis rows to outputPath.
func WriteCommitAnalysesParquet(data []CommitAnalysis, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteFileRatingsParquet writes file rating rows to outputPath.
func WriteFileRatingsParquet(data []FileRating, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteSuggestionsParquet writes suggestion rows to outputPath.
func WriteSuggestionsParquet(data []Suggestion, outputPath string) error {
	return writeRows(data, outputPath)
}

// writeRows infers the Parquet schema from the struct tags of T.
func writeRows[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	// Close flushes the footer; the file is unreadable without it.
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Close()
}

// ConvertAnalysisSummaries converts stored summaries to export rows.
func ConvertAnalysisSummaries(summaries []schema.AnalysisSummary) []CommitAnalysis {
	result := make([]CommitAnalysis, len(summaries))
	for i, s := range summaries {
		row := CommitAnalysis{
			ID:              s.ID,
			CommitID:        s.CommitID,
			Author:          s.Author,
			Email:           s.Email,
			CommitDate:      s.CommitDate,
			AnalysisDate:    s.AnalysisDate,
			Language:        s.Language,
			AddedLines:      int32(s.AddedLines),
			RemovedLines:    int32(s.RemovedLines),
			VariableNaming:  int32(s.Scores.VariableNaming),
			FunctionSizes:   int32(s.Scores.FunctionSizes),
			NoNeedsComments: int32(s.Scores.NoNeedsComments),
			MethodCohesion:  int32(s.Scores.MethodCohesion),
			DeadCode:        int32(s.Scores.DeadCode),
			FileCount:       int32(s.FileCount),
			SuggestionCount: int32(s.SuggestionCount),
		}
		if s.Quality != "" {
			note, quality := s.Note, string(s.Quality)
			row.Note = &note
			row.Quality = &quality
		}
		result[i] = row
	}
	return result
}

// ConvertFileRatingRecords converts stored file ratings to export rows.
func ConvertFileRatingRecords(records []schema.FileRatingRecord) []FileRating {
	result := make([]FileRating, len(records))
	for i, r := range records {
		result[i] = FileRating{
			CommitID:        r.CommitID,
			FilePath:        r.FilePath,
			Language:        r.Language,
			AddedLines:      int32(r.AddedLines),
			RemovedLines:    int32(r.RemovedLines),
			VariableNaming:  int32(r.Scores.VariableNaming),
			FunctionSizes:   int32(r.Scores.FunctionSizes),
			NoNeedsComments: int32(r.Scores.NoNeedsComments),
			MethodCohesion:  int32(r.Scores.MethodCohesion),
			DeadCode:        int32(r.Scores.DeadCode),
			Note:            r.Note,
			Quality:         string(r.Quality),
			SuggestionCount: int32(r.SuggestionCount),
			AnalysisDate:    r.AnalysisDate,
		}
	}
	return result
}

// ConvertSuggestions flattens the suggestions of a commit to export rows.
func ConvertSuggestions(commitID string, suggestions []schema.Suggestion) []Suggestion {
	result := make([]Suggestion, len(suggestions))
	for i, s := range suggestions {
		result[i] = Suggestion{
			CommitID:       commitID,
			FileReference:  s.FileReference,
			Title:          s.Title,
			Description:    s.Description,
			Priority:       string(s.Priority),
			Category:       string(s.Category),
			Difficulty:     string(s.Difficulty),
			LastUpdate:     s.LastUpdate,
			StudyResources: s.StudyResources,
		}
	}
	return result
}
