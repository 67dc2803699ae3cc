package schema

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CommitAnalysis is the aggregate of every file analysis for one commit.
// It is shared by concurrent file tasks, so the file and suggestion
// collections are only touched under mu.
type CommitAnalysis struct {
	ID           string
	CommitID     string
	Author       string
	Email        string
	CommitDate   time.Time
	AnalysisDate time.Time
	Language     string
	AddedLines   int
	RemovedLines int

	mu          sync.Mutex
	files       []CommitFile
	suggestions []Suggestion
}

// NewCommitAnalysis validates the commit metadata and returns an empty aggregate.
func NewCommitAnalysis(commit CommitData, language string, addedLines, removedLines int, analyzedAt time.Time) (*CommitAnalysis, error) {
	ca := &CommitAnalysis{
		ID:           uuid.NewString(),
		CommitID:     commit.ID,
		Author:       commit.Author,
		Email:        commit.Email,
		CommitDate:   commit.Date,
		AnalysisDate: analyzedAt,
		Language:     language,
		AddedLines:   addedLines,
		RemovedLines: removedLines,
	}
	if err := ca.validate(); err != nil {
		return nil, err
	}
	return ca, nil
}

func (ca *CommitAnalysis) validate() error {
	switch {
	case strings.TrimSpace(ca.CommitID) == "":
		return fmt.Errorf("%w: commit id is empty", ErrInvalidCommit)
	case strings.TrimSpace(ca.Author) == "":
		return fmt.Errorf("%w: author is empty for %s", ErrInvalidCommit, ca.CommitID)
	case strings.TrimSpace(ca.Language) == "":
		return fmt.Errorf("%w: language is empty for %s", ErrInvalidCommit, ca.CommitID)
	case ca.AddedLines < 0 || ca.RemovedLines < 0:
		return fmt.Errorf("%w: negative line totals for %s", ErrInvalidCommit, ca.CommitID)
	}
	if ca.Email != "" {
		if _, err := mail.ParseAddress(ca.Email); err != nil {
			return fmt.Errorf("%w: email %q for %s: %v", ErrInvalidCommit, ca.Email, ca.CommitID, err)
		}
	}
	return nil
}

// AddFile registers a file. Paths must be unique within the commit.
func (ca *CommitAnalysis) AddFile(file CommitFile) error {
	ca.mu.Lock()
	defer ca.mu.Unlock()

	if ca.indexOf(file.Path) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateFile, file.Path)
	}
	ca.files = append(ca.files, file.clone())
	return nil
}

// CompleteFileAnalysis stores a file's rating and suggestions and appends the
// suggestions to the commit-wide list.
func (ca *CommitAnalysis) CompleteFileAnalysis(path string, rating Rating, suggestions []Suggestion) error {
	ca.mu.Lock()
	defer ca.mu.Unlock()

	i := ca.indexOf(path)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	ca.files[i].SetAnalysis(rating, suggestions)
	ca.suggestions = append(ca.suggestions, cloneSuggestions(suggestions)...)
	return nil
}

func (ca *CommitAnalysis) indexOf(path string) int {
	return slices.IndexFunc(ca.files, func(f CommitFile) bool { return f.Path == path })
}

// Files returns a snapshot of the registered files.
func (ca *CommitAnalysis) Files() []CommitFile {
	ca.mu.Lock()
	defer ca.mu.Unlock()
	return cloneFiles(ca.files)
}

// Suggestions returns a snapshot of the flattened suggestions.
func (ca *CommitAnalysis) Suggestions() []Suggestion {
	ca.mu.Lock()
	defer ca.mu.Unlock()
	return cloneSuggestions(ca.suggestions)
}

// AnalyzedFileCount returns how many files have a rating.
func (ca *CommitAnalysis) AnalyzedFileCount() int {
	ca.mu.Lock()
	defer ca.mu.Unlock()

	n := 0
	for i := range ca.files {
		if ca.files[i].HasAnalysis() {
			n++
		}
	}
	return n
}

// Rating computes the commit-level rating from the analyzed files, or nil if there are none.
func (ca *CommitAnalysis) Rating() *Rating {
	ca.mu.Lock()
	defer ca.mu.Unlock()
	return ca.rating()
}

func (ca *CommitAnalysis) rating() *Rating {
	var ratings []Rating
	for i := range ca.files {
		if r := ca.files[i].Rating; r != nil {
			ratings = append(ratings, *r)
		}
	}
	return AggregateRatings(ratings)
}

// OverallNote returns the commit-level note, or 0 when nothing is analyzed.
func (ca *CommitAnalysis) OverallNote() float64 {
	if r := ca.Rating(); r != nil {
		return r.Note()
	}
	return 0
}

// Record returns a serializable snapshot of the aggregate.
func (ca *CommitAnalysis) Record() CommitAnalysisRecord {
	ca.mu.Lock()
	defer ca.mu.Unlock()

	rec := CommitAnalysisRecord{
		ID:           ca.ID,
		CommitID:     ca.CommitID,
		Author:       ca.Author,
		Email:        ca.Email,
		CommitDate:   ca.CommitDate,
		AnalysisDate: ca.AnalysisDate,
		Language:     ca.Language,
		AddedLines:   ca.AddedLines,
		RemovedLines: ca.RemovedLines,
		Files:        cloneFiles(ca.files),
		Suggestions:  cloneSuggestions(ca.suggestions),
		Rating:       ca.rating(),
	}
	if rec.Rating != nil {
		rec.Note = rec.Rating.Note()
		rec.Quality = rec.Rating.Quality()
	}
	return rec
}

// Summary returns the list view of the aggregate.
func (ca *CommitAnalysis) Summary() AnalysisSummary {
	return ca.Record().Summary()
}

// MarshalJSON encodes the aggregate through its record.
func (ca *CommitAnalysis) MarshalJSON() ([]byte, error) {
	return json.Marshal(ca.Record())
}

// RestoreCommitAnalysis rebuilds an aggregate from a stored record.
func RestoreCommitAnalysis(rec CommitAnalysisRecord) (*CommitAnalysis, error) {
	ca := &CommitAnalysis{
		ID:           rec.ID,
		CommitID:     rec.CommitID,
		Author:       rec.Author,
		Email:        rec.Email,
		CommitDate:   rec.CommitDate,
		AnalysisDate: rec.AnalysisDate,
		Language:     rec.Language,
		AddedLines:   rec.AddedLines,
		RemovedLines: rec.RemovedLines,
	}
	for _, f := range rec.Files {
		if err := ca.AddFile(f); err != nil {
			return nil, err
		}
	}
	ca.suggestions = cloneSuggestions(rec.Suggestions)
	return ca, nil
}

func cloneFiles(files []CommitFile) []CommitFile {
	out := make([]CommitFile, len(files))
	for i, f := range files {
		out[i] = f.clone()
	}
	return out
}
