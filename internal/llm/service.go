package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/huangsam/cleanscore/internal/contract"
	"github.com/huangsam/cleanscore/schema"
)

// Service implements contract.LLMService on top of a Generator.
type Service struct {
	gen                Generator
	analysisTimeout    time.Duration
	suggestionsTimeout time.Duration
	maxRepairs         int
	suggestionAttempts int
	suggestionBackoff  time.Duration
	logger             *slog.Logger
}

var _ contract.LLMService = &Service{} // Compile-time check

// NewService wires a generator with the timeouts and retry budgets from cfg.
func NewService(gen Generator, cfg *contract.Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = contract.DiscardLogger()
	}
	attempts := max(cfg.SuggestionAttempts, 1)
	backoffBase := cfg.SuggestionBackoff
	if backoffBase <= 0 {
		backoffBase = contract.DefaultSuggestionBackoff
	}
	return &Service{
		gen:                gen,
		analysisTimeout:    cfg.AnalysisTimeout,
		suggestionsTimeout: cfg.SuggestionsTimeout,
		maxRepairs:         cfg.MaxJSONFixRetries,
		suggestionAttempts: attempts,
		suggestionBackoff:  backoffBase,
		logger:             logger,
	}
}

// FallbackAssessment is the neutral verdict used when a reply cannot be repaired.
func FallbackAssessment() schema.FileAssessment {
	justifications := make(map[string]string, len(schema.Criteria))
	for _, c := range schema.Criteria {
		justifications[c] = schema.UnavailableJustification
	}
	return schema.FileAssessment{
		Scores:         schema.UniformScores(schema.NeutralScore),
		Justifications: justifications,
	}
}

// FallbackSuggestions are the generic suggestions used when a reply cannot be repaired.
func FallbackSuggestions() []schema.Suggestion {
	return []schema.Suggestion{
		{
			Title:          "Review variable naming",
			Description:    "Check that variable names are descriptive and follow the project's conventions.",
			Priority:       schema.PriorityMedium,
			Category:       schema.CategoryCodeStyle,
			Difficulty:     schema.DifficultyEasy,
			StudyResources: []string{"Clean Code - Chapter 2: Meaningful Names"},
		},
		{
			Title:          "Review function size",
			Description:    "Check that functions are small and focused on a single responsibility.",
			Priority:       schema.PriorityMedium,
			Category:       schema.CategoryStructure,
			Difficulty:     schema.DifficultyMedium,
			StudyResources: []string{"Clean Code - Chapter 3: Functions"},
		},
		{
			Title:          "Review the need for comments",
			Description:    "Check whether the code explains itself or still needs comments.",
			Priority:       schema.PriorityLow,
			Category:       schema.CategoryDocumentation,
			Difficulty:     schema.DifficultyEasy,
			StudyResources: []string{"Clean Code - Chapter 4: Comments"},
		},
	}
}

// AnalyzeFile implements the LLMService interface.
// Generate failures are returned as-is; malformed replies go through the repair loop.
func (s *Service) AnalyzeFile(ctx context.Context, content string) (schema.FileAssessment, error) {
	reply, err := s.gen.Generate(ctx, BuildAnalysisPrompt(content), s.analysisTimeout)
	if err != nil {
		return schema.FileAssessment{}, err
	}

	loop := RepairLoop[schema.FileAssessment]{
		Name:       "analysis",
		MaxRepairs: s.maxRepairs,
		Parse:      ParseAnalysis,
		Repair: func(ctx context.Context, candidate string) (string, error) {
			return s.gen.Generate(ctx, BuildAnalysisRepairPrompt(candidate), s.analysisTimeout)
		},
		Extract:  FindObject,
		Fallback: FallbackAssessment,
		Logger:   s.logger,
	}
	result, err := loop.Run(ctx, ExtractObject(reply))
	if err != nil {
		return schema.FileAssessment{}, err
	}
	return result.Value, nil
}

// GenerateSuggestions implements the LLMService interface.
// Each failed round trip is retried with exponential backoff; it returns an empty list
// when every attempt fails.
func (s *Service) GenerateSuggestions(ctx context.Context, content string, rating schema.Rating) []schema.Suggestion {
	prompt := BuildSuggestionsPrompt(content, rating)
	loop := RepairLoop[[]schema.Suggestion]{
		Name:       "suggestions",
		MaxRepairs: s.maxRepairs,
		Parse:      ParseSuggestions,
		Repair: func(ctx context.Context, candidate string) (string, error) {
			return s.gen.Generate(ctx, BuildSuggestionsRepairPrompt(candidate), s.suggestionsTimeout)
		},
		Extract:  FindSuggestions,
		Fallback: FallbackSuggestions,
		Logger:   s.logger,
	}

	attempt := 0
	var suggestions []schema.Suggestion
	operation := func() error {
		attempt++
		reply, err := s.gen.Generate(ctx, prompt, s.suggestionsTimeout)
		if err != nil {
			return err
		}
		result, err := loop.Run(ctx, ExtractSuggestions(reply))
		if err != nil {
			return backoff.Permanent(err)
		}
		suggestions = result.Value
		return nil
	}

	err := backoff.RetryNotify(operation, s.retryPolicy(ctx), func(err error, wait time.Duration) {
		s.logger.Warn("suggestions request failed, retrying",
			"attempt", attempt, "max_attempts", s.suggestionAttempts, "wait", wait, "err", err)
	})
	if err != nil {
		s.logger.Warn("suggestions unavailable", "attempts", attempt, "err", err)
		return []schema.Suggestion{}
	}
	return suggestions
}

// retryPolicy waits base, 2*base, 4*base... between attempts, bounded by the attempt budget.
func (s *Service) retryPolicy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.suggestionBackoff
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = s.suggestionBackoff << s.suggestionAttempts
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(s.suggestionAttempts-1)), ctx)
}
