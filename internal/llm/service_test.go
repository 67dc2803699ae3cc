package llm

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/huangsam/cleanscore/internal/contract"
	"github.com/huangsam/cleanscore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type generateReply struct {
	text string
	err  error
}

// fakeGenerator replays replies in order and records every prompt.
type fakeGenerator struct {
	mu       sync.Mutex
	replies  []generateReply
	prompts  []string
	timeouts []time.Duration
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string, timeout time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.timeouts = append(f.timeouts, timeout)
	if len(f.replies) == 0 {
		return "", &TransportError{StatusCode: 500, Body: "no scripted reply"}
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r.text, r.err
}

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func testServiceConfig() *contract.Config {
	return &contract.Config{
		AnalysisTimeout:    3 * time.Second,
		SuggestionsTimeout: 2 * time.Second,
		MaxJSONFixRetries:  2,
		SuggestionAttempts: 3,
		SuggestionBackoff:  time.Millisecond,
	}
}

func TestServiceAnalyzeFile(t *testing.T) {
	gen := &fakeGenerator{replies: []generateReply{
		{text: `Here is my review: {"variableScore": 9, "functionScore": 8, "commentScore": 7, "cohesionScore": 6, "deadCodeScore": 5}`},
	}}
	svc := NewService(gen, testServiceConfig(), nil)

	got, err := svc.AnalyzeFile(context.Background(), "func main() {}")
	require.NoError(t, err)
	assert.Equal(t, schema.CriterionScores{VariableNaming: 9, FunctionSizes: 8, NoNeedsComments: 7, MethodCohesion: 6, DeadCode: 5}, got.Scores)
	assert.Equal(t, schema.MissingJustification, got.Justifications[schema.CriterionDeadCode])
	require.Equal(t, 1, gen.calls())
	assert.Contains(t, gen.prompts[0], "func main() {}")
	assert.Equal(t, 3*time.Second, gen.timeouts[0])
}

func TestServiceAnalyzeFile_RepairsThenFallsBack(t *testing.T) {
	gen := &fakeGenerator{replies: []generateReply{
		{text: `{"variableScore": 9,,}`},
		{text: `{"variableScore": 9,,,}`},
		{text: `{"variableScore": 9,,,,}`},
	}}
	svc := NewService(gen, testServiceConfig(), nil)

	got, err := svc.AnalyzeFile(context.Background(), "code")
	require.NoError(t, err)
	assert.Equal(t, FallbackAssessment(), got)
	assert.Equal(t, 3, gen.calls(), "one analysis call plus two repairs")
	assert.Contains(t, gen.prompts[1], `{"variableScore": 9,,}`, "repair prompt embeds the broken candidate")
}

func TestServiceAnalyzeFile_RepairSucceeds(t *testing.T) {
	gen := &fakeGenerator{replies: []generateReply{
		{text: `{"variableScore": 9,}`},
		{text: `fixed: {"variableScore": 2}`},
	}}
	svc := NewService(gen, testServiceConfig(), nil)

	got, err := svc.AnalyzeFile(context.Background(), "code")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Scores.VariableNaming)
}

func TestServiceAnalyzeFile_PropagatesHardErrors(t *testing.T) {
	for _, hard := range []error{
		&TimeoutError{Budget: time.Second},
		&TransportError{StatusCode: 502},
		&ProtocolError{Reason: "empty 'response' field"},
	} {
		gen := &fakeGenerator{replies: []generateReply{{err: hard}}}
		_, err := NewService(gen, testServiceConfig(), nil).AnalyzeFile(context.Background(), "code")
		assert.Equal(t, hard, err)
	}
}

func TestServiceGenerateSuggestions(t *testing.T) {
	gen := &fakeGenerator{replies: []generateReply{
		{text: `[{"title":"Rename","description":"Better names","priority":"High","type":"Naming","difficulty":"Easy"}]`},
	}}
	svc := NewService(gen, testServiceConfig(), nil)
	rating, err := schema.NewRating(schema.CriterionScores{VariableNaming: 9, FunctionSizes: 2, NoNeedsComments: 7, MethodCohesion: 4, DeadCode: 8}, nil)
	require.NoError(t, err)

	got := svc.GenerateSuggestions(context.Background(), "code", rating)
	require.Len(t, got, 1)
	assert.Equal(t, "Rename", got[0].Title)
	assert.Equal(t, 2*time.Second, gen.timeouts[0])

	prompt := gen.prompts[0]
	assert.Less(t, strings.Index(prompt, "Function Sizes: 2"), strings.Index(prompt, "Method Cohesion: 4"))
	assert.Less(t, strings.Index(prompt, "Method Cohesion: 4"), strings.Index(prompt, "No Needs Comments: 7"))
	assert.Less(t, strings.Index(prompt, "Dead Code: 8"), strings.Index(prompt, "Variable Naming: 9"))
}

func TestServiceGenerateSuggestions_RetriesSoftFailures(t *testing.T) {
	gen := &fakeGenerator{replies: []generateReply{
		{err: &TimeoutError{Budget: time.Second}},
		{err: &TransportError{StatusCode: 503}},
		{text: `{"title":"Single","description":"Wrapped object"}`},
	}}
	got := NewService(gen, testServiceConfig(), nil).GenerateSuggestions(context.Background(), "code", schema.Rating{Scores: schema.UniformScores(5)})
	require.Len(t, got, 1)
	assert.Equal(t, "Single", got[0].Title)
	assert.Equal(t, 3, gen.calls())
}

func TestServiceGenerateSuggestions_GivesUpWithEmptyList(t *testing.T) {
	gen := &fakeGenerator{}
	got := NewService(gen, testServiceConfig(), nil).GenerateSuggestions(context.Background(), "code", schema.Rating{Scores: schema.UniformScores(5)})
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, 3, gen.calls(), "bounded by the attempt budget")
}

func TestServiceGenerateSuggestions_FallbackAfterRepairs(t *testing.T) {
	gen := &fakeGenerator{replies: []generateReply{
		{text: `[{"title": "a",]`},
		{text: `[{"title": "a",,]`},
		{text: `no json at all`},
	}}
	got := NewService(gen, testServiceConfig(), nil).GenerateSuggestions(context.Background(), "code", schema.Rating{Scores: schema.UniformScores(5)})
	assert.Equal(t, FallbackSuggestions(), got)
	assert.Equal(t, 3, gen.calls())
}

func TestServiceGenerateSuggestions_EmptyArrayIsSuccess(t *testing.T) {
	gen := &fakeGenerator{replies: []generateReply{{text: `[]`}}}
	got := NewService(gen, testServiceConfig(), nil).GenerateSuggestions(context.Background(), "code", schema.Rating{Scores: schema.UniformScores(5)})
	assert.Empty(t, got)
	assert.Equal(t, 1, gen.calls())
}

func TestServiceRetryPolicy(t *testing.T) {
	cfg := &contract.Config{SuggestionAttempts: 3, SuggestionBackoff: 2 * time.Second}
	s := NewService(&fakeGenerator{}, cfg, nil)

	policy := s.retryPolicy(context.Background())
	var waits []time.Duration
	for range 4 {
		waits = append(waits, policy.NextBackOff())
	}
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second, backoff.Stop, backoff.Stop}, waits)
}

func TestServiceRetryPolicy_StopsWhenCancelled(t *testing.T) {
	cfg := &contract.Config{SuggestionAttempts: 3, SuggestionBackoff: 2 * time.Second}
	s := NewService(&fakeGenerator{}, cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, backoff.Stop, s.retryPolicy(ctx).NextBackOff())
}

func TestFallbacks(t *testing.T) {
	fa := FallbackAssessment()
	assert.Equal(t, schema.UniformScores(5), fa.Scores)
	for _, c := range schema.Criteria {
		assert.Equal(t, schema.UnavailableJustification, fa.Justifications[c])
	}

	fs := FallbackSuggestions()
	require.Len(t, fs, 3)
	assert.Equal(t, schema.CategoryCodeStyle, fs[0].Category)
	assert.Equal(t, schema.CategoryStructure, fs[1].Category)
	assert.Equal(t, schema.DifficultyMedium, fs[1].Difficulty)
	assert.Equal(t, schema.PriorityLow, fs[2].Priority)
	assert.Equal(t, schema.CategoryDocumentation, fs[2].Category)
}
