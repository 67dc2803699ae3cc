// Package schema has the domain models, constants and errors shared by all parts of cleanscore.
package schema

import "time"

// FileChange is one file touched by a commit, as reported by the git collaborator.
type FileChange struct {
	Path         string     `json:"path"`
	Language     string     `json:"language"`
	AddedLines   int        `json:"added_lines"`
	RemovedLines int        `json:"removed_lines"`
	Content      string     `json:"content"`
	Kind         ChangeKind `json:"kind"`
	IsSourceCode bool       `json:"is_source_code"`
}

// CommitData is the commit metadata needed to start an analysis.
type CommitData struct {
	ID           string    `json:"id"`
	Author       string    `json:"author"`
	Email        string    `json:"email"`
	Date         time.Time `json:"date"`
	Message      string    `json:"message"`
	MessageShort string    `json:"message_short"`
}

// CommitFile is a file registered in a commit analysis.
// Rating is nil until the file has been analyzed.
type CommitFile struct {
	Path         string       `json:"path"`
	Language     string       `json:"language"`
	AddedLines   int          `json:"added_lines"`
	RemovedLines int          `json:"removed_lines"`
	Content      string       `json:"content"`
	Rating       *Rating      `json:"rating,omitempty"`
	Suggestions  []Suggestion `json:"suggestions"`
}

// NewCommitFile registers a file change without any analysis.
func NewCommitFile(change FileChange) CommitFile {
	return CommitFile{
		Path:         change.Path,
		Language:     change.Language,
		AddedLines:   change.AddedLines,
		RemovedLines: change.RemovedLines,
		Content:      change.Content,
	}
}

// SetAnalysis replaces the rating and suggestions wholesale.
// Both are copied, so the caller keeps no handle on the file's state.
func (f *CommitFile) SetAnalysis(rating Rating, suggestions []Suggestion) {
	r := rating.clone()
	f.Rating = &r
	f.Suggestions = cloneSuggestions(suggestions)
}

func (f CommitFile) clone() CommitFile {
	if f.Rating != nil {
		r := f.Rating.clone()
		f.Rating = &r
	}
	f.Suggestions = cloneSuggestions(f.Suggestions)
	return f
}

// HasAnalysis reports whether the file has been analyzed.
func (f *CommitFile) HasAnalysis() bool {
	return f.Rating != nil
}

// AnalysisOutcome is what the orchestrator returns for one commit.
type AnalysisOutcome struct {
	CommitID string          `json:"commit_id"`
	Status   AnalysisStatus  `json:"status"`
	Analysis *CommitAnalysis `json:"analysis,omitempty"`
	Reason   string          `json:"reason,omitempty"`
}

// FileAssessment is the parsed model verdict for one file before it becomes a Rating.
type FileAssessment struct {
	Scores         CriterionScores   `json:"scores"`
	Justifications map[string]string `json:"justifications"`
}
