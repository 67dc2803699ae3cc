package schema

import "time"

// CommitAnalysisRecord is the explicit persisted shape of a commit analysis.
type CommitAnalysisRecord struct {
	ID           string       `json:"id"`
	CommitID     string       `json:"commit_id"`
	Author       string       `json:"author"`
	Email        string       `json:"email"`
	CommitDate   time.Time    `json:"commit_date"`
	AnalysisDate time.Time    `json:"analysis_date"`
	Language     string       `json:"language"`
	AddedLines   int          `json:"added_lines"`
	RemovedLines int          `json:"removed_lines"`
	Files        []CommitFile `json:"files"`
	Suggestions  []Suggestion `json:"suggestions"`
	Rating       *Rating      `json:"rating,omitempty"`
	Note         float64      `json:"note"`
	Quality      Quality      `json:"quality,omitempty"`
}

// Summary reduces the record to its list view.
func (r CommitAnalysisRecord) Summary() AnalysisSummary {
	s := AnalysisSummary{
		ID:              r.ID,
		CommitID:        r.CommitID,
		Author:          r.Author,
		Email:           r.Email,
		CommitDate:      r.CommitDate,
		AnalysisDate:    r.AnalysisDate,
		Language:        r.Language,
		AddedLines:      r.AddedLines,
		RemovedLines:    r.RemovedLines,
		Note:            r.Note,
		Quality:         r.Quality,
		FileCount:       len(r.Files),
		SuggestionCount: len(r.Suggestions),
	}
	if r.Rating != nil {
		s.Scores = r.Rating.Scores
	}
	return s
}

// FileRecords flattens the analyzed files of the record.
func (r CommitAnalysisRecord) FileRecords() []FileRatingRecord {
	var out []FileRatingRecord
	for _, f := range r.Files {
		if f.Rating == nil {
			continue
		}
		out = append(out, FileRatingRecord{
			CommitID:        r.CommitID,
			FilePath:        f.Path,
			Language:        f.Language,
			AddedLines:      f.AddedLines,
			RemovedLines:    f.RemovedLines,
			Scores:          f.Rating.Scores,
			Note:            f.Rating.Note(),
			Quality:         f.Rating.Quality(),
			SuggestionCount: len(f.Suggestions),
			AnalysisDate:    r.AnalysisDate,
		})
	}
	return out
}

// AnalysisSummary is one row of the commit analyses table.
type AnalysisSummary struct {
	ID              string          `json:"id"`
	CommitID        string          `json:"commit_id"`
	Author          string          `json:"author"`
	Email           string          `json:"email"`
	CommitDate      time.Time       `json:"commit_date"`
	AnalysisDate    time.Time       `json:"analysis_date"`
	Language        string          `json:"language"`
	AddedLines      int             `json:"added_lines"`
	RemovedLines    int             `json:"removed_lines"`
	Note            float64         `json:"note"`
	Quality         Quality         `json:"quality"`
	Scores          CriterionScores `json:"scores"`
	FileCount       int             `json:"file_count"`
	SuggestionCount int             `json:"suggestion_count"`
}

// FileRatingRecord is one row of the file ratings table.
type FileRatingRecord struct {
	CommitID        string          `json:"commit_id"`
	FilePath        string          `json:"file_path"`
	Language        string          `json:"language"`
	AddedLines      int             `json:"added_lines"`
	RemovedLines    int             `json:"removed_lines"`
	Scores          CriterionScores `json:"scores"`
	Note            float64         `json:"note"`
	Quality         Quality         `json:"quality"`
	SuggestionCount int             `json:"suggestion_count"`
	AnalysisDate    time.Time       `json:"analysis_date"`
}

// ListFilter narrows a listing of stored analyses.
type ListFilter struct {
	Limit    int
	Language string
}
