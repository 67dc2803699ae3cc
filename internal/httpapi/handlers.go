package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/huangsam/cleanscore/core"
	"github.com/huangsam/cleanscore/internal/contract"
	"github.com/huangsam/cleanscore/schema"
)

// AnalysisFinder resolves a commit id, full or abbreviated, to its stored analysis.
type AnalysisFinder interface {
	FindAnalysis(ctx context.Context, commitID string) (*schema.CommitAnalysis, error)
}

var _ AnalysisFinder = &core.Orchestrator{} // Compile-time check

// Handlers holds the dependencies of the API endpoints.
type Handlers struct {
	finder       AnalysisFinder
	store        contract.AnalysisStore
	defaultLimit int
}

// NewHandlers creates the API handlers.
func NewHandlers(finder AnalysisFinder, store contract.AnalysisStore, defaultLimit int) *Handlers {
	if defaultLimit <= 0 {
		defaultLimit = contract.DefaultListLimit
	}
	return &Handlers{finder: finder, store: store, defaultLimit: defaultLimit}
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type analysisListResponse struct {
	Success  bool                     `json:"success"`
	Analysis []schema.AnalysisSummary `json:"analysis"`
}

type analysisResponse struct {
	Success  bool                   `json:"success"`
	Analysis *schema.CommitAnalysis `json:"analysis"`
}

type statisticsResponse struct {
	Success    bool              `json:"success"`
	Statistics schema.Statistics `json:"statistics"`
}

// HealthHandler reports that the API is up.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "OK", Timestamp: time.Now().UTC()})
}

// ListAnalyses returns stored summaries, newest first. Accepts ?limit= and ?language=.
func (h *Handlers) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	filter := schema.ListFilter{
		Limit:    h.defaultLimit,
		Language: strings.TrimSpace(r.URL.Query().Get("language")),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", raw))
			return
		}
		filter.Limit = limit
	}

	summaries, err := h.store.List(r.Context(), filter)
	if err != nil {
		WriteInternalError(w, err)
		return
	}
	if summaries == nil {
		summaries = []schema.AnalysisSummary{}
	}
	writeJSON(w, http.StatusOK, analysisListResponse{Success: true, Analysis: summaries})
}

// GetAnalysis returns the full stored analysis of one commit.
func (h *Handlers) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	commitID := chi.URLParam(r, "commitID")
	analysis, err := h.finder.FindAnalysis(r.Context(), commitID)
	if err != nil {
		WriteInternalError(w, err)
		return
	}
	if analysis == nil {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("no analysis stored for commit %s", commitID))
		return
	}
	writeJSON(w, http.StatusOK, analysisResponse{Success: true, Analysis: analysis})
}

// GetStatistics summarizes every stored analysis.
func (h *Handlers) GetStatistics(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.store.List(r.Context(), schema.ListFilter{})
	if err != nil {
		WriteInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statisticsResponse{Success: true, Statistics: core.BuildStatistics(summaries)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
