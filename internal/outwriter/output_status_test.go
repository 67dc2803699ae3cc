package outwriter

import (
	"bytes"
	"slices"
	"testing"
	"time"

	"github.com/huangsam/cleanscore/schema"
	"github.com/stretchr/testify/assert"
)

func TestWriteStoreStatusText(t *testing.T) {
	status := schema.StoreStatus{
		Backend:            "sqlite",
		Connected:          true,
		TotalAnalyses:      2,
		TotalFiles:         5,
		LastAnalysisTime:   time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
		OldestAnalysisTime: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		TableSizes:         map[string]int64{"cleanscore_file_ratings": 5, "cleanscore_commit_analyses": 2},
	}

	var buf bytes.Buffer
	writeStoreStatusText(&buf, status)

	out := buf.String()
	assert.Contains(t, out, "Backend: sqlite")
	assert.Contains(t, out, "Total analyses: 2")
	assert.Contains(t, out, "Last analysis: 2024-03-02T00:00:00Z")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("cleanscore_commit_analyses")), bytes.Index(buf.Bytes(), []byte("cleanscore_file_ratings")))
}

func TestWriteStoreStatusText_Disconnected(t *testing.T) {
	var buf bytes.Buffer
	writeStoreStatusText(&buf, schema.StoreStatus{Backend: "none"})
	assert.NotContains(t, buf.String(), "Total analyses")
}

func TestHealthRows(t *testing.T) {
	tests := []struct {
		name     string
		report   schema.HealthReport
		expected []bool
	}{
		{
			name: "all healthy",
			report: schema.HealthReport{
				Ollama:   schema.OllamaStatus{BaseURL: "http://localhost:11434", Reachable: true, Models: []string{"llama3"}},
				Store:    schema.StoreStatus{Backend: "sqlite"},
				RepoRoot: "/repo",
			},
			expected: []bool{true, true, true},
		},
		{
			name: "every check failing",
			report: schema.HealthReport{
				Ollama:     schema.OllamaStatus{BaseURL: "http://localhost:11434", Error: "connection refused"},
				StoreError: "database is locked",
				RepoError:  "not a git repository",
			},
			expected: []bool{false, false, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := healthRows(tt.report)
			got := make([]bool, 0, len(rows))
			for _, r := range rows {
				got = append(got, r.ok)
			}
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.report.Healthy(), !slices.Contains(got, false))
		})
	}
}

func TestScanRows(t *testing.T) {
	report := &schema.ScanReport{
		Found:    4,
		Outcomes: []schema.AnalysisOutcome{completedOutcome(t), skippedOutcome()},
		Failures: map[string]string{"c2": "model timeout", "c1": "bad reply"},
	}

	rows := scanRows(report, createFormatter(1))

	assert.Equal(t, [][]string{
		{testCommitID, "Completed", "8.0", "VeryGood", "2", ""},
		{"ffffffffffffffffffffffffffffffffffffffff", "Skipped", "", "", "", "no source code files to analyze"},
		{"c1", "Failed", "", "", "", "bad reply"},
		{"c2", "Failed", "", "", "", "model timeout"},
	}, rows)
}
