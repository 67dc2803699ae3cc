//go:build integration || database

package integration

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/cleanscore/schema"
	"github.com/stretchr/testify/require"
)

var (
	// sharedBinaryPath holds the path to a cleanscore binary built once for all tests.
	sharedBinaryPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getBinary returns the path to the cleanscore binary, building it once if needed.
func getBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "cleanscore-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		binaryPath := filepath.Join(tempDir, "cleanscore")
		buildCmd := exec.Command("go", "build", "-o", binaryPath, ".")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		if out, err := buildCmd.CombinedOutput(); err != nil {
			panic(fmt.Sprintf("failed to build cleanscore: %v\n%s", err, out))
		}

		sharedBinaryPath = binaryPath
	})

	return sharedBinaryPath
}

// runCommand runs the binary in dir with extra environment and returns stdout and stderr combined.
func runCommand(t *testing.T, dir string, env []string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getBinary(), args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Logf("Command failed: %s\nOutput: %s", cmd.String(), string(output))
	}
	return string(output), err
}

// sampleAnalysis builds a commit analysis with one rated file per score.
func sampleAnalysis(t *testing.T, commitID string, scores ...int) *schema.CommitAnalysis {
	t.Helper()
	commit := schema.CommitData{
		ID:     commitID,
		Author: "Alice",
		Email:  "alice@example.com",
		Date:   time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	analysis, err := schema.NewCommitAnalysis(commit, "Go", 10, 2, time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, err)

	for i, score := range scores {
		path := fmt.Sprintf("pkg/file%d.go", i)
		require.NoError(t, analysis.AddFile(schema.NewCommitFile(schema.FileChange{
			Path: path, Language: "Go", AddedLines: 5, RemovedLines: 1, Content: "package pkg",
		})))
		rating, err := schema.NewRating(schema.UniformScores(score), map[string]string{schema.CriterionDeadCode: "no dead code"})
		require.NoError(t, err)
		suggestion := schema.Suggestion{
			Title:          "Extract helper",
			Description:    "Split the long function.",
			Priority:       schema.PriorityHigh,
			Category:       schema.CategoryFunctions,
			Difficulty:     schema.DifficultyMedium,
			StudyResources: []string{"Clean Code - Chapter 3: Functions"},
		}
		require.NoError(t, analysis.CompleteFileAnalysis(path, rating, []schema.Suggestion{suggestion.ForFile(path, analysis.AnalysisDate)}))
	}
	return analysis
}
