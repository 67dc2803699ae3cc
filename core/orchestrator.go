// Package core has the commit analysis pipeline: file fan-out, aggregation and persistence.
package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/huangsam/cleanscore/internal/contract"
	"github.com/huangsam/cleanscore/schema"
	"golang.org/x/sync/errgroup"
)

// Orchestrator analyzes commits with the model and persists the verdicts.
type Orchestrator struct {
	cfg    *contract.Config
	git    contract.GitClient
	llm    contract.LLMService
	store  contract.AnalysisStore
	prober contract.ModelProber
	logger *slog.Logger
	now    func() time.Time
}

// NewOrchestrator wires the collaborators. store and prober may be nil.
func NewOrchestrator(cfg *contract.Config, git contract.GitClient, llm contract.LLMService, store contract.AnalysisStore, prober contract.ModelProber, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = contract.DiscardLogger()
	}
	return &Orchestrator{
		cfg:    cfg,
		git:    git,
		llm:    llm,
		store:  store,
		prober: prober,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// AnalyzeCommit runs the full pipeline for one commit.
//
// The store is consulted before git, so a stored analysis is returned as AlreadyExists
// without touching the repository or the model. Revisions the store does not know
// (HEAD, abbreviated hashes) are resolved through git and looked up again.
// Commits with nothing to analyze, or whose language cannot be determined, are Skipped
// and not persisted. Any file-level failure aborts the commit: the first error is returned
// once in-flight files finish and nothing is stored.
func (o *Orchestrator) AnalyzeCommit(ctx context.Context, commitID string) (*schema.AnalysisOutcome, error) {
	logger := o.logger.With("commit", contract.ShortCommitID(commitID))
	outcome := &schema.AnalysisOutcome{CommitID: commitID, Status: schema.StatusNotStarted}

	if existing, err := o.storedAnalysis(ctx, commitID); err != nil || existing != nil {
		return o.alreadyExists(logger, outcome, existing, err)
	}

	commit, err := o.git.GetCommitByID(ctx, o.cfg.RepoPath, commitID)
	if err != nil {
		if errors.Is(err, schema.ErrCommitNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read commit %s: %w", commitID, err)
	}
	outcome.CommitID = commit.ID

	if !strings.EqualFold(commit.ID, commitID) {
		if existing, err := o.storedAnalysis(ctx, commit.ID); err != nil || existing != nil {
			return o.alreadyExists(logger, outcome, existing, err)
		}
	}

	changes, err := o.git.GetCommitChanges(ctx, o.cfg.RepoPath, commit.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read changes of %s: %w", commit.ID, err)
	}

	eligible := EligibleChanges(changes)
	language := DominantLanguage(eligible)
	added, removed := lineTotals(changes)

	analysis, err := schema.NewCommitAnalysis(*commit, language, added, removed, o.now())
	if err != nil {
		return nil, err
	}
	for _, change := range eligible {
		if err := analysis.AddFile(schema.NewCommitFile(change)); err != nil {
			return nil, err
		}
	}

	outcome.Status = schema.StatusInProgress
	outcome.Analysis = analysis
	start := time.Now()
	logger.Info("analyzing commit", "files", len(eligible), "total_files", len(changes), "language", language, "max_concurrent", o.maxConcurrent())

	if err := o.analyzeFiles(ctx, logger, analysis, eligible); err != nil {
		logger.Error("commit analysis aborted", "elapsed", time.Since(start), "err", err)
		return nil, err
	}
	logger.Info("files analyzed", "elapsed", time.Since(start))

	if analysis.AnalyzedFileCount() == 0 {
		logger.Warn("skipping commit, no source files were analyzed", "total_files", len(changes))
		outcome.Status = schema.StatusSkipped
		outcome.Reason = "no source code files to analyze"
		return outcome, nil
	}
	if language == schema.UnknownLanguage {
		logger.Warn("skipping commit, language could not be determined", "files", analysis.AnalyzedFileCount())
		outcome.Status = schema.StatusSkipped
		outcome.Reason = "language could not be determined"
		return outcome, nil
	}

	if o.store != nil {
		if err := o.store.Add(ctx, analysis); err != nil {
			return nil, fmt.Errorf("failed to store analysis of %s: %w", commit.ID, err)
		}
	}
	outcome.Status = schema.StatusCompleted
	logger.Info("commit analysis saved", "note", analysis.OverallNote(), "files", analysis.AnalyzedFileCount(), "status", outcome.Status)
	return outcome, nil
}

// storedAnalysis looks a commit up in the store, if there is one.
func (o *Orchestrator) storedAnalysis(ctx context.Context, commitID string) (*schema.CommitAnalysis, error) {
	if o.store == nil {
		return nil, nil
	}
	existing, err := o.store.GetByCommitID(ctx, commitID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up stored analysis for %s: %w", commitID, err)
	}
	return existing, nil
}

func (o *Orchestrator) alreadyExists(logger *slog.Logger, outcome *schema.AnalysisOutcome, existing *schema.CommitAnalysis, err error) (*schema.AnalysisOutcome, error) {
	if err != nil {
		return nil, err
	}
	logger.Info("commit already analyzed")
	outcome.CommitID = existing.CommitID
	outcome.Status = schema.StatusAlreadyExists
	outcome.Analysis = existing
	return outcome, nil
}

// analyzeFiles fans out one task per file with at most MaxConcurrent in flight.
// The group has no derived context, so one failing file does not cancel its siblings.
func (o *Orchestrator) analyzeFiles(ctx context.Context, logger *slog.Logger, analysis *schema.CommitAnalysis, files []schema.FileChange) error {
	var g errgroup.Group
	g.SetLimit(o.maxConcurrent())
	for _, file := range files {
		g.Go(func() error {
			return o.analyzeFile(ctx, logger, analysis, file)
		})
	}
	return g.Wait()
}

func (o *Orchestrator) analyzeFile(ctx context.Context, logger *slog.Logger, analysis *schema.CommitAnalysis, file schema.FileChange) error {
	logger = logger.With("file", file.Path)
	start := time.Now()
	logger.Debug("analyzing file")

	assessment, err := o.llm.AnalyzeFile(ctx, file.Content)
	if err != nil {
		return fmt.Errorf("failed to analyze %s: %w", file.Path, err)
	}
	rating, err := schema.NewRating(assessment.Scores, assessment.Justifications)
	if err != nil {
		return fmt.Errorf("invalid rating for %s: %w", file.Path, err)
	}

	raw := o.llm.GenerateSuggestions(ctx, file.Content, rating)
	at := o.now()
	suggestions := make([]schema.Suggestion, 0, len(raw))
	for _, s := range raw {
		suggestions = append(suggestions, s.ForFile(file.Path, at))
	}

	if err := analysis.CompleteFileAnalysis(file.Path, rating, suggestions); err != nil {
		return err
	}
	logger.Info("file analyzed", "elapsed", time.Since(start), "note", rating.Note(), "suggestions", len(suggestions))
	return nil
}

func (o *Orchestrator) maxConcurrent() int {
	if o.cfg.MaxConcurrent < 1 {
		return contract.DefaultMaxConcurrent
	}
	return o.cfg.MaxConcurrent
}

// FindAnalysis returns the stored analysis of a commit, or nil.
// Abbreviated hashes are resolved through git when a direct lookup misses.
func (o *Orchestrator) FindAnalysis(ctx context.Context, commitID string) (*schema.CommitAnalysis, error) {
	if o.store == nil {
		return nil, nil
	}
	found, err := o.store.GetByCommitID(ctx, commitID)
	if err != nil || found != nil || o.git == nil || o.cfg.RepoPath == "" {
		return found, err
	}
	commit, err := o.git.GetCommitByID(ctx, o.cfg.RepoPath, commitID)
	if err != nil || strings.EqualFold(commit.ID, commitID) {
		return nil, nil
	}
	return o.store.GetByCommitID(ctx, commit.ID)
}

// EligibleChanges keeps source files that still exist and have content to review.
func EligibleChanges(changes []schema.FileChange) []schema.FileChange {
	var out []schema.FileChange
	for _, c := range changes {
		if !c.IsSourceCode || c.Kind == schema.ChangeDeleted || strings.TrimSpace(c.Content) == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// DominantLanguage returns the most frequent language; ties go to the language seen first.
func DominantLanguage(changes []schema.FileChange) string {
	counts := make(map[string]int)
	var order []string
	for _, c := range changes {
		lang := strings.TrimSpace(c.Language)
		if lang == "" {
			continue
		}
		if counts[lang] == 0 {
			order = append(order, lang)
		}
		counts[lang]++
	}

	best := schema.UnknownLanguage
	bestCount := 0
	for _, lang := range order {
		if counts[lang] > bestCount {
			best, bestCount = lang, counts[lang]
		}
	}
	return best
}

func lineTotals(changes []schema.FileChange) (added, removed int) {
	for _, c := range changes {
		added += c.AddedLines
		removed += c.RemovedLines
	}
	return added, removed
}
