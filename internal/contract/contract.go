// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/cleanscore/schema"
)

// GitClient defines the Git operations needed to analyze commits.
// This allows the orchestration logic to be tested without needing a real git executable.
type GitClient interface {
	// Run executes a git command and returns its output.
	// Its use should be minimized in favor of the explicit methods below.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// GetRepoRoot returns the absolute path to the root of the Git repository
	// containing the given context path.
	GetRepoRoot(ctx context.Context, contextPath string) (string, error)

	// GetCommitByID returns commit metadata, or an error wrapping schema.ErrCommitNotFound.
	GetCommitByID(ctx context.Context, repoPath string, commitID string) (*schema.CommitData, error)

	// GetCommitChanges returns the files touched by a commit relative to its first parent.
	GetCommitChanges(ctx context.Context, repoPath string, commitID string) ([]schema.FileChange, error)

	// GetCommitsByPeriod returns commits authored within [since, until], newest first.
	GetCommitsByPeriod(ctx context.Context, repoPath string, since, until time.Time) ([]schema.CommitData, error)
}

// LLMService scores files and proposes improvements through a language model.
type LLMService interface {
	// AnalyzeFile returns the parsed verdict. Transport and timeout failures are returned.
	AnalyzeFile(ctx context.Context, content string) (schema.FileAssessment, error)

	// GenerateSuggestions never fails; it returns an empty list when the model is unusable.
	GenerateSuggestions(ctx context.Context, content string, rating schema.Rating) []schema.Suggestion
}

// ModelProber reports whether the model server is reachable.
type ModelProber interface {
	CheckHealth(ctx context.Context) schema.OllamaStatus
}

// StoreManager defines the interface for reaching the analysis store.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetAnalysisStore() AnalysisStore
}

// AnalysisStore persists commit analyses.
type AnalysisStore interface {
	// GetByID returns the analysis with the given record ID, or nil if absent.
	GetByID(ctx context.Context, id string) (*schema.CommitAnalysis, error)

	// GetByCommitID returns the analysis for a commit, or nil if absent.
	GetByCommitID(ctx context.Context, commitID string) (*schema.CommitAnalysis, error)

	// Add stores a completed analysis.
	Add(ctx context.Context, analysis *schema.CommitAnalysis) error

	// List returns stored analyses, newest analysis first.
	List(ctx context.Context, filter schema.ListFilter) ([]schema.AnalysisSummary, error)

	// Delete removes the analysis of a commit. Deleting a missing commit is not an error.
	Delete(ctx context.Context, commitID string) error

	// GetAllFileRecords returns every stored file rating.
	GetAllFileRecords(ctx context.Context) ([]schema.FileRatingRecord, error)

	// GetStatus returns status information about the store.
	GetStatus(ctx context.Context) (schema.StoreStatus, error)

	// Close closes the underlying connection.
	Close() error
}
