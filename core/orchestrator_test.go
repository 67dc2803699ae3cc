package core

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/huangsam/cleanscore/internal/contract"
	"github.com/huangsam/cleanscore/internal/iocache"
	"github.com/huangsam/cleanscore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testRepo = "/test/repo"

var testCommit = &schema.CommitData{
	ID:           "a1b2c3d4e5f60718293a4b5c6d7e8f9012345678",
	Author:       "Alice",
	Email:        "alice@example.com",
	Date:         time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	Message:      "Add parser",
	MessageShort: "Add parser",
}

func testConfig() *contract.Config {
	return &contract.Config{RepoPath: testRepo, MaxConcurrent: 2, ScanLimit: 5, Lookback: 7 * 24 * time.Hour}
}

func goChange(path, content string) schema.FileChange {
	return schema.FileChange{
		Path:         path,
		Language:     "Go",
		AddedLines:   3,
		RemovedLines: 1,
		Content:      content,
		Kind:         schema.ChangeModified,
		IsSourceCode: true,
	}
}

func assessment(score int) schema.FileAssessment {
	return schema.FileAssessment{
		Scores:         schema.UniformScores(score),
		Justifications: map[string]string{schema.CriterionVariableNaming: fmt.Sprintf("scored %d", score)},
	}
}

// fakeLLM scores files by content and tracks how many calls run at once.
type fakeLLM struct {
	scores   map[string]int
	failures map[string]error
	jitter   time.Duration

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	mu          sync.Mutex
	analyzed    []string
}

func (f *fakeLLM) AnalyzeFile(ctx context.Context, content string) (schema.FileAssessment, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		cur := f.maxInFlight.Load()
		if n <= cur || f.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}
	if f.jitter > 0 {
		time.Sleep(time.Duration(rand.Int64N(int64(f.jitter))))
	}

	f.mu.Lock()
	f.analyzed = append(f.analyzed, content)
	f.mu.Unlock()

	if err := f.failures[content]; err != nil {
		return schema.FileAssessment{}, err
	}
	return assessment(f.scores[content]), nil
}

func (f *fakeLLM) GenerateSuggestions(_ context.Context, content string, _ schema.Rating) []schema.Suggestion {
	return []schema.Suggestion{{
		Title:       "Improve " + content,
		Description: "Split the function",
		Priority:    schema.PriorityMedium,
		Category:    schema.CategoryFunctions,
		Difficulty:  schema.DifficultyEasy,
	}}
}

func TestAnalyzeCommit_BoundedConcurrency(t *testing.T) {
	ctx := context.Background()
	git := &contract.MockGitClient{}
	store := &iocache.MockAnalysisStore{}
	llm := &fakeLLM{
		scores: map[string]int{"a": 10, "b": 6, "c": 8},
		jitter: 20 * time.Millisecond,
	}

	changes := []schema.FileChange{goChange("a.go", "a"), goChange("b.go", "b"), goChange("c.go", "c")}
	git.On("GetCommitByID", ctx, testRepo, testCommit.ID).Return(testCommit, nil)
	git.On("GetCommitChanges", ctx, testRepo, testCommit.ID).Return(changes, nil)
	store.On("GetByCommitID", ctx, testCommit.ID).Return(nil, nil)
	store.On("Add", ctx, mock.AnythingOfType("*schema.CommitAnalysis")).Return(nil)

	o := NewOrchestrator(testConfig(), git, llm, store, nil, nil)
	for range 5 {
		outcome, err := o.AnalyzeCommit(ctx, testCommit.ID)
		require.NoError(t, err)
		assert.Equal(t, schema.StatusCompleted, outcome.Status)

		rating := outcome.Analysis.Rating()
		require.NotNil(t, rating)
		assert.Equal(t, schema.UniformScores(8), rating.Scores)
		assert.Equal(t, 3, outcome.Analysis.AnalyzedFileCount())
		assert.Len(t, outcome.Analysis.Suggestions(), 3)
		assert.Equal(t, 9, outcome.Analysis.AddedLines)
		assert.Equal(t, 3, outcome.Analysis.RemovedLines)
	}
	assert.LessOrEqual(t, llm.maxInFlight.Load(), int32(2))
	assert.GreaterOrEqual(t, llm.maxInFlight.Load(), int32(1))

	git.AssertExpectations(t)
	store.AssertNumberOfCalls(t, "Add", 5)
}

func TestAnalyzeCommit_AggregatesTwoFiles(t *testing.T) {
	ctx := context.Background()
	git := &contract.MockGitClient{}
	llm := &contract.MockLLMService{}

	git.On("GetCommitByID", ctx, testRepo, testCommit.ID).Return(testCommit, nil)
	git.On("GetCommitChanges", ctx, testRepo, testCommit.ID).Return([]schema.FileChange{
		goChange("good.go", "good"),
		goChange("fair.go", "fair"),
	}, nil)
	llm.On("AnalyzeFile", ctx, "good").Return(assessment(10), nil)
	llm.On("AnalyzeFile", ctx, "fair").Return(assessment(6), nil)
	llm.On("GenerateSuggestions", ctx, mock.Anything, mock.Anything).Return([]schema.Suggestion{})

	o := NewOrchestrator(testConfig(), git, llm, nil, nil, nil)
	outcome, err := o.AnalyzeCommit(ctx, testCommit.ID)
	require.NoError(t, err)

	rec := outcome.Analysis.Record()
	require.NotNil(t, rec.Rating)
	assert.Equal(t, schema.UniformScores(8), rec.Rating.Scores)
	assert.InDelta(t, 8.0, rec.Note, 1e-9)
	assert.Equal(t, schema.QualityVeryGood, rec.Quality)
	assert.Equal(t, "Go", rec.Language)
	assert.Empty(t, rec.Suggestions)

	llm.AssertExpectations(t)
}

func TestAnalyzeCommit_SuggestionsAttachedToFile(t *testing.T) {
	ctx := context.Background()
	git := &contract.MockGitClient{}
	llm := &contract.MockLLMService{}
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	git.On("GetCommitByID", ctx, testRepo, testCommit.ID).Return(testCommit, nil)
	git.On("GetCommitChanges", ctx, testRepo, testCommit.ID).Return([]schema.FileChange{goChange("main.go", "x")}, nil)
	llm.On("AnalyzeFile", ctx, "x").Return(assessment(4), nil)
	llm.On("GenerateSuggestions", ctx, "x", mock.AnythingOfType("schema.Rating")).Return([]schema.Suggestion{
		{Title: "Rename", Description: "Use better names"},
	})

	o := NewOrchestrator(testConfig(), git, llm, nil, nil, nil)
	o.now = func() time.Time { return now }

	outcome, err := o.AnalyzeCommit(ctx, testCommit.ID)
	require.NoError(t, err)

	suggestions := outcome.Analysis.Suggestions()
	require.Len(t, suggestions, 1)
	assert.Equal(t, "main.go", suggestions[0].FileReference)
	assert.True(t, suggestions[0].LastUpdate.Equal(now))
	assert.True(t, outcome.Analysis.AnalysisDate.Equal(now))

	files := outcome.Analysis.Files()
	require.Len(t, files, 1)
	assert.Len(t, files[0].Suggestions, 1)
}

func TestAnalyzeCommit_AlreadyExists(t *testing.T) {
	ctx := context.Background()
	git := &contract.MockGitClient{}
	llm := &contract.MockLLMService{}
	store := &iocache.MockAnalysisStore{}

	existing, err := schema.NewCommitAnalysis(*testCommit, "Go", 1, 0, time.Now())
	require.NoError(t, err)

	store.On("GetByCommitID", ctx, "a1b2c3d").Return(nil, nil)
	git.On("GetCommitByID", ctx, testRepo, "a1b2c3d").Return(testCommit, nil)
	store.On("GetByCommitID", ctx, testCommit.ID).Return(existing, nil)

	o := NewOrchestrator(testConfig(), git, llm, store, nil, nil)
	outcome, err := o.AnalyzeCommit(ctx, "a1b2c3d")
	require.NoError(t, err)
	assert.Equal(t, schema.StatusAlreadyExists, outcome.Status)
	assert.Same(t, existing, outcome.Analysis)
	assert.Equal(t, testCommit.ID, outcome.CommitID)

	llm.AssertNotCalled(t, "AnalyzeFile", mock.Anything, mock.Anything)
	git.AssertNotCalled(t, "GetCommitChanges", mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
}

func TestAnalyzeCommit_AlreadyExistsWithoutRepository(t *testing.T) {
	ctx := context.Background()
	git := &contract.MockGitClient{}
	store := &iocache.MockAnalysisStore{}

	existing, err := schema.NewCommitAnalysis(*testCommit, "Go", 1, 0, time.Now())
	require.NoError(t, err)
	store.On("GetByCommitID", ctx, testCommit.ID).Return(existing, nil)

	o := NewOrchestrator(testConfig(), git, &contract.MockLLMService{}, store, nil, nil)
	outcome, err := o.AnalyzeCommit(ctx, testCommit.ID)
	require.NoError(t, err)
	assert.Equal(t, schema.StatusAlreadyExists, outcome.Status)
	assert.Same(t, existing, outcome.Analysis)

	git.AssertNotCalled(t, "GetCommitByID", mock.Anything, mock.Anything, mock.Anything)
	git.AssertNotCalled(t, "GetCommitChanges", mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyzeCommit_CommitNotFound(t *testing.T) {
	ctx := context.Background()
	git := &contract.MockGitClient{}
	git.On("GetCommitByID", ctx, testRepo, "deadbeef").Return(nil, fmt.Errorf("%w: deadbeef", schema.ErrCommitNotFound))

	o := NewOrchestrator(testConfig(), git, &contract.MockLLMService{}, nil, nil, nil)
	outcome, err := o.AnalyzeCommit(ctx, "deadbeef")
	assert.Nil(t, outcome)
	assert.ErrorIs(t, err, schema.ErrCommitNotFound)
}

func TestAnalyzeCommit_Skipped(t *testing.T) {
	tests := []struct {
		name    string
		changes []schema.FileChange
		reason  string
	}{
		{
			name: "no source files",
			changes: []schema.FileChange{
				{Path: "README.md", Language: "Unknown", Content: "# hi", Kind: schema.ChangeAdded},
			},
			reason: "no source code files",
		},
		{
			name: "only deleted files",
			changes: []schema.FileChange{
				{Path: "old.go", Language: "Go", RemovedLines: 10, Kind: schema.ChangeDeleted, IsSourceCode: true},
			},
			reason: "no source code files",
		},
		{
			name: "empty content",
			changes: []schema.FileChange{
				{Path: "blank.go", Language: "Go", Content: "  \n", Kind: schema.ChangeModified, IsSourceCode: true},
			},
			reason: "no source code files",
		},
		{
			name: "unknown language",
			changes: []schema.FileChange{
				{Path: "script", Language: "", Content: "echo hi", Kind: schema.ChangeAdded, IsSourceCode: true},
			},
			reason: "language could not be determined",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			git := &contract.MockGitClient{}
			llm := &contract.MockLLMService{}
			store := &iocache.MockAnalysisStore{}

			git.On("GetCommitByID", ctx, testRepo, testCommit.ID).Return(testCommit, nil)
			git.On("GetCommitChanges", ctx, testRepo, testCommit.ID).Return(tt.changes, nil)
			store.On("GetByCommitID", ctx, testCommit.ID).Return(nil, nil)
			llm.On("AnalyzeFile", ctx, mock.Anything).Return(assessment(7), nil)
			llm.On("GenerateSuggestions", ctx, mock.Anything, mock.Anything).Return([]schema.Suggestion{})

			o := NewOrchestrator(testConfig(), git, llm, store, nil, nil)
			outcome, err := o.AnalyzeCommit(ctx, testCommit.ID)
			require.NoError(t, err)
			assert.Equal(t, schema.StatusSkipped, outcome.Status)
			assert.Contains(t, outcome.Reason, tt.reason)
			store.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
		})
	}
}

func TestAnalyzeCommit_FileFailureDiscardsCommit(t *testing.T) {
	ctx := context.Background()
	git := &contract.MockGitClient{}
	store := &iocache.MockAnalysisStore{}
	boom := errors.New("connection refused")
	llm := &fakeLLM{
		scores:   map[string]int{"a": 9, "c": 9},
		failures: map[string]error{"b": boom},
	}

	git.On("GetCommitByID", ctx, testRepo, testCommit.ID).Return(testCommit, nil)
	git.On("GetCommitChanges", ctx, testRepo, testCommit.ID).Return([]schema.FileChange{
		goChange("a.go", "a"), goChange("b.go", "b"), goChange("c.go", "c"),
	}, nil)
	store.On("GetByCommitID", ctx, testCommit.ID).Return(nil, nil)

	o := NewOrchestrator(testConfig(), git, llm, store, nil, nil)
	outcome, err := o.AnalyzeCommit(ctx, testCommit.ID)
	assert.Nil(t, outcome)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "b.go")

	// Siblings are not cancelled by the failure.
	assert.Len(t, llm.analyzed, 3)
	store.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
}

func TestAnalyzeCommit_StoreErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("lookup", func(t *testing.T) {
		git := &contract.MockGitClient{}
		store := &iocache.MockAnalysisStore{}
		store.On("GetByCommitID", ctx, testCommit.ID).Return(nil, errors.New("disk I/O error"))

		o := NewOrchestrator(testConfig(), git, &contract.MockLLMService{}, store, nil, nil)
		_, err := o.AnalyzeCommit(ctx, testCommit.ID)
		assert.ErrorContains(t, err, "disk I/O error")
		git.AssertNotCalled(t, "GetCommitByID", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("add", func(t *testing.T) {
		git := &contract.MockGitClient{}
		store := &iocache.MockAnalysisStore{}
		llm := &fakeLLM{scores: map[string]int{"a": 7}}
		git.On("GetCommitByID", ctx, testRepo, testCommit.ID).Return(testCommit, nil)
		git.On("GetCommitChanges", ctx, testRepo, testCommit.ID).Return([]schema.FileChange{goChange("a.go", "a")}, nil)
		store.On("GetByCommitID", ctx, testCommit.ID).Return(nil, nil)
		store.On("Add", ctx, mock.Anything).Return(errors.New("UNIQUE constraint failed"))

		o := NewOrchestrator(testConfig(), git, llm, store, nil, nil)
		outcome, err := o.AnalyzeCommit(ctx, testCommit.ID)
		assert.Nil(t, outcome)
		assert.ErrorContains(t, err, "failed to store analysis")
	})
}

func TestAnalyzeCommit_InvalidAuthor(t *testing.T) {
	ctx := context.Background()
	git := &contract.MockGitClient{}
	commit := *testCommit
	commit.Author = " "
	git.On("GetCommitByID", ctx, testRepo, commit.ID).Return(&commit, nil)
	git.On("GetCommitChanges", ctx, testRepo, commit.ID).Return([]schema.FileChange{goChange("a.go", "a")}, nil)

	o := NewOrchestrator(testConfig(), git, &contract.MockLLMService{}, nil, nil, nil)
	_, err := o.AnalyzeCommit(ctx, commit.ID)
	assert.ErrorIs(t, err, schema.ErrInvalidCommit)
}

func TestAnalyzeCommit_DuplicatePaths(t *testing.T) {
	ctx := context.Background()
	git := &contract.MockGitClient{}
	git.On("GetCommitByID", ctx, testRepo, testCommit.ID).Return(testCommit, nil)
	git.On("GetCommitChanges", ctx, testRepo, testCommit.ID).Return([]schema.FileChange{
		goChange("a.go", "a"), goChange("a.go", "again"),
	}, nil)

	o := NewOrchestrator(testConfig(), git, &contract.MockLLMService{}, nil, nil, nil)
	_, err := o.AnalyzeCommit(ctx, testCommit.ID)
	assert.ErrorIs(t, err, schema.ErrDuplicateFile)
}

func TestFindAnalysis(t *testing.T) {
	ctx := context.Background()
	existing, err := schema.NewCommitAnalysis(*testCommit, "Go", 1, 0, time.Now())
	require.NoError(t, err)

	t.Run("direct hit", func(t *testing.T) {
		store := &iocache.MockAnalysisStore{}
		store.On("GetByCommitID", ctx, testCommit.ID).Return(existing, nil)
		o := NewOrchestrator(testConfig(), &contract.MockGitClient{}, nil, store, nil, nil)

		found, err := o.FindAnalysis(ctx, testCommit.ID)
		require.NoError(t, err)
		assert.Same(t, existing, found)
	})

	t.Run("abbreviated hash", func(t *testing.T) {
		git := &contract.MockGitClient{}
		store := &iocache.MockAnalysisStore{}
		store.On("GetByCommitID", ctx, "a1b2c3").Return(nil, nil)
		store.On("GetByCommitID", ctx, testCommit.ID).Return(existing, nil)
		git.On("GetCommitByID", ctx, testRepo, "a1b2c3").Return(testCommit, nil)
		o := NewOrchestrator(testConfig(), git, nil, store, nil, nil)

		found, err := o.FindAnalysis(ctx, "a1b2c3")
		require.NoError(t, err)
		assert.Same(t, existing, found)
	})

	t.Run("unknown commit", func(t *testing.T) {
		git := &contract.MockGitClient{}
		store := &iocache.MockAnalysisStore{}
		store.On("GetByCommitID", ctx, "zzz").Return(nil, nil)
		git.On("GetCommitByID", ctx, testRepo, "zzz").Return(nil, schema.ErrCommitNotFound)
		o := NewOrchestrator(testConfig(), git, nil, store, nil, nil)

		found, err := o.FindAnalysis(ctx, "zzz")
		assert.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("no store", func(t *testing.T) {
		o := NewOrchestrator(testConfig(), &contract.MockGitClient{}, nil, nil, nil, nil)
		found, err := o.FindAnalysis(ctx, testCommit.ID)
		assert.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestEligibleChanges(t *testing.T) {
	changes := []schema.FileChange{
		goChange("keep.go", "package keep"),
		{Path: "gone.go", Kind: schema.ChangeDeleted, IsSourceCode: true},
		{Path: "notes.txt", Content: "text", Kind: schema.ChangeAdded},
		{Path: "empty.go", Content: "\t\n", Kind: schema.ChangeAdded, IsSourceCode: true},
		{Path: "moved.py", Language: "Python", Content: "x = 1", Kind: schema.ChangeRenamed, IsSourceCode: true},
	}

	got := EligibleChanges(changes)
	require.Len(t, got, 2)
	assert.Equal(t, "keep.go", got[0].Path)
	assert.Equal(t, "moved.py", got[1].Path)
	assert.Empty(t, EligibleChanges(nil))
}

func TestDominantLanguage(t *testing.T) {
	lang := func(langs ...string) []schema.FileChange {
		out := make([]schema.FileChange, len(langs))
		for i, l := range langs {
			out[i] = schema.FileChange{Language: l}
		}
		return out
	}

	tests := []struct {
		name     string
		changes  []schema.FileChange
		expected string
	}{
		{"empty", nil, schema.UnknownLanguage},
		{"single", lang("Go"), "Go"},
		{"majority", lang("Python", "Go", "Go"), "Go"},
		{"tie goes to first seen", lang("Python", "Go", "Go", "Python"), "Python"},
		{"blank languages ignored", lang("", " ", "Rust"), "Rust"},
		{"only blanks", lang("", ""), schema.UnknownLanguage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DominantLanguage(tt.changes))
		})
	}
}

func TestLineTotals(t *testing.T) {
	added, removed := lineTotals([]schema.FileChange{
		{AddedLines: 5, RemovedLines: 2},
		{AddedLines: 0, RemovedLines: 7, Kind: schema.ChangeDeleted},
	})
	assert.Equal(t, 5, added)
	assert.Equal(t, 9, removed)
}
