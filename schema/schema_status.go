package schema

import "time"

// StoreStatus represents the status of the analysis store.
type StoreStatus struct {
	Backend            string           `json:"backend"`
	Connected          bool             `json:"connected"`
	TotalAnalyses      int              `json:"total_analyses"`
	TotalFiles         int              `json:"total_files"`
	LastAnalysisTime   time.Time        `json:"last_analysis_time"`
	OldestAnalysisTime time.Time        `json:"oldest_analysis_time"`
	TableSizes         map[string]int64 `json:"table_sizes"`
}

// OllamaStatus is the result of probing the model server.
type OllamaStatus struct {
	BaseURL        string   `json:"base_url"`
	Reachable      bool     `json:"reachable"`
	Model          string   `json:"model"`
	ModelAvailable bool     `json:"model_available"`
	Models         []string `json:"models"`
	Error          string   `json:"error,omitempty"`
}

// HealthReport groups the checks run before a scan cycle.
type HealthReport struct {
	Ollama     OllamaStatus `json:"ollama"`
	Store      StoreStatus  `json:"store"`
	StoreError string       `json:"store_error,omitempty"`
	RepoRoot   string       `json:"repo_root"`
	RepoError  string       `json:"repo_error,omitempty"`
}

// Healthy reports whether every check passed.
func (h HealthReport) Healthy() bool {
	return h.Ollama.Reachable && h.StoreError == "" && h.RepoError == ""
}

// CommitStatistic is the per-commit line of the statistics view.
type CommitStatistic struct {
	CommitID string          `json:"commit_id"`
	Author   string          `json:"author"`
	Language string          `json:"language"`
	Note     float64         `json:"note"`
	Quality  Quality         `json:"quality"`
	Metrics  CriterionScores `json:"metrics"`
}

// Statistics summarizes every stored analysis.
type Statistics struct {
	TotalAnalyses    int               `json:"total_analyses"`
	TotalFiles       int               `json:"total_files"`
	TotalSuggestions int               `json:"total_suggestions"`
	AverageNote      float64           `json:"average_note"`
	BestNote         float64           `json:"best_note"`
	WorstNote        float64           `json:"worst_note"`
	ByQuality        map[Quality]int   `json:"by_quality"`
	ByLanguage       map[string]int    `json:"by_language"`
	Commits          []CommitStatistic `json:"commits"`
}

// ScanReport summarizes one scan cycle over recent commits.
type ScanReport struct {
	Since    time.Time         `json:"since"`
	Until    time.Time         `json:"until"`
	Found    int               `json:"found"`
	Outcomes []AnalysisOutcome `json:"outcomes"`
	Failures map[string]string `json:"failures,omitempty"`
}
