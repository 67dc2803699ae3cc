package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/huangsam/cleanscore/internal/contract"
	"github.com/huangsam/cleanscore/internal/iocache"
	"github.com/huangsam/cleanscore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const commitID = "a1b2c3d4e5f60718293a4b5c6d7e8f9012345678"

type finderFunc func(ctx context.Context, commitID string) (*schema.CommitAnalysis, error)

func (f finderFunc) FindAnalysis(ctx context.Context, commitID string) (*schema.CommitAnalysis, error) {
	return f(ctx, commitID)
}

func storedAnalysis(t *testing.T) *schema.CommitAnalysis {
	t.Helper()
	commit := schema.CommitData{ID: commitID, Author: "Alice", Email: "alice@example.com", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	analysis, err := schema.NewCommitAnalysis(commit, "Go", 3, 1, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, analysis.AddFile(schema.NewCommitFile(schema.FileChange{Path: "main.go", Language: "Go", Content: "package main"})))
	rating, err := schema.NewRating(schema.UniformScores(9), nil)
	require.NoError(t, err)
	require.NoError(t, analysis.CompleteFileAnalysis("main.go", rating, nil))
	return analysis
}

func serve(t *testing.T, handler http.Handler, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec, body
}

func TestHealthHandler(t *testing.T) {
	router := NewRouter(nil, &iocache.MockAnalysisStore{}, 0, nil)

	rec, body := serve(t, router, "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "OK", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestListAnalyses(t *testing.T) {
	store := &iocache.MockAnalysisStore{}
	store.On("List", mock.Anything, schema.ListFilter{Limit: 3, Language: "Go"}).
		Return([]schema.AnalysisSummary{{CommitID: commitID, Language: "Go", Note: 9}}, nil)
	router := NewRouter(nil, store, 25, nil)

	rec, body := serve(t, router, "/api/v1/analysis?limit=3&language=Go")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	items, ok := body["analysis"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	assert.Equal(t, commitID, items[0].(map[string]any)["commit_id"])
	store.AssertExpectations(t)
}

func TestListAnalyses_DefaultLimitEmpty(t *testing.T) {
	store := &iocache.MockAnalysisStore{}
	store.On("List", mock.Anything, schema.ListFilter{Limit: 25}).Return(nil, nil)
	router := NewRouter(nil, store, 0, nil)

	rec, body := serve(t, router, "/api/v1/analysis")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, body["analysis"])
}

func TestListAnalyses_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		status int
		error  string
	}{
		{name: "non numeric limit", target: "/api/v1/analysis?limit=abc", status: http.StatusBadRequest, error: `invalid limit "abc"`},
		{name: "zero limit", target: "/api/v1/analysis?limit=0", status: http.StatusBadRequest, error: `invalid limit "0"`},
		{name: "store failure", target: "/api/v1/analysis?limit=5", status: http.StatusInternalServerError, error: "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &iocache.MockAnalysisStore{}
			store.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
			router := NewRouter(nil, store, 25, nil)

			rec, body := serve(t, router, tt.target)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.error, body["error"])
		})
	}
}

func TestGetAnalysis(t *testing.T) {
	analysis := storedAnalysis(t)
	finder := finderFunc(func(_ context.Context, id string) (*schema.CommitAnalysis, error) {
		switch id {
		case commitID, "a1b2c3d4":
			return analysis, nil
		case "broken":
			return nil, errors.New("database is locked")
		default:
			return nil, nil
		}
	})
	router := NewRouter(finder, &iocache.MockAnalysisStore{}, 25, nil)

	t.Run("found by abbreviated hash", func(t *testing.T) {
		rec, body := serve(t, router, "/api/v1/analysis/a1b2c3d4")
		assert.Equal(t, http.StatusOK, rec.Code)
		got, ok := body["analysis"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, commitID, got["commit_id"])
		assert.Equal(t, "Excellent", got["quality"])
	})

	t.Run("not found", func(t *testing.T) {
		rec, body := serve(t, router, "/api/v1/analysis/deadbeef")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "no analysis stored for commit deadbeef", body["error"])
	})

	t.Run("store failure", func(t *testing.T) {
		rec, body := serve(t, router, "/api/v1/analysis/broken")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "database is locked", body["message"])
	})
}

func TestGetStatistics(t *testing.T) {
	store := &iocache.MockAnalysisStore{}
	store.On("List", mock.Anything, schema.ListFilter{}).Return([]schema.AnalysisSummary{
		{CommitID: "c1", Language: "Go", Note: 9, Quality: schema.QualityExcellent},
		{CommitID: "c2", Language: "Python", Note: 5, Quality: schema.QualityAcceptable},
	}, nil)
	router := NewRouter(nil, store, 25, nil)

	rec, body := serve(t, router, "/api/v1/statistics")

	assert.Equal(t, http.StatusOK, rec.Code)
	stats, ok := body["statistics"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 7.0, stats["average_note"], 1e-9)
	assert.InDelta(t, 9.0, stats["best_note"], 1e-9)
	assert.InDelta(t, 5.0, stats["worst_note"], 1e-9)
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := RecoveryMiddleware(contract.DiscardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec, body := serve(t, handler, "/panic")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", body["error"])
}
