//go:build integration

package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	fakeModel = "test-model"

	fakeAnalysisReply = `{"variableScore": 8, "functionScore": 8, "commentScore": 8, "cohesionScore": 8, "deadCodeScore": 8,
"justifications": {"VariableNaming": "clear", "FunctionSizes": "short", "NoNeedsComments": "readable", "MethodCohesion": "focused", "DeadCode": "none"}}`

	fakeSuggestionsReply = `[{"title": "Name the magic number", "description": "Extract 42 into a named constant.",
"priority": "High", "type": "CodeStyle", "difficulty": "Easy", "studyResources": ["Clean Code - Chapter 17: Smells and Heuristics"]}]`
)

// newFakeOllama serves canned replies for the two prompt kinds.
func newFakeOllama(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]string{{"name": fakeModel}},
		})
	})
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt string `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		reply := fakeSuggestionsReply
		if strings.Contains(req.Prompt, "variableScore") {
			reply = fakeAnalysisReply
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"response": reply, "done": true})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// newRepo creates a repository with one commit touching a Go file and a README.
func newRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	git := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}
	git("init", "-q")
	git("config", "user.name", "Alice")
	git("config", "user.email", "alice@example.com")
	git("config", "commit.gpgsign", "false")

	src := "package main\n\nfunc main() {\n\tprintln(42)\n}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte(src), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# demo\n"), 0o644))
	git("add", ".")
	git("commit", "-q", "-m", "Initial commit")
	return dir
}

func TestAnalyzeShowListRoundTrip(t *testing.T) {
	ollama := newFakeOllama(t)
	repo := newRepo(t)
	env := []string{
		"CLEANSCORE_OLLAMA_URL=" + ollama.URL,
		"CLEANSCORE_MODEL=" + fakeModel,
		"CLEANSCORE_STORE_DB_CONNECT=" + filepath.Join(t.TempDir(), "analyses.db"),
		"CLEANSCORE_SUGGESTION_ATTEMPTS=1",
		"CLEANSCORE_LOG_LEVEL=error",
	}

	out, err := runCommand(t, repo, env, "health")
	require.NoError(t, err)
	assert.Contains(t, out, ollama.URL)

	out, err = runCommand(t, repo, env, "analyze", "HEAD", "--output", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "Completed")
	assert.Contains(t, out, "main.go")
	assert.Contains(t, out, "VeryGood")
	assert.Contains(t, out, "Name the magic number")
	assert.NotContains(t, out, "README.md")

	out, err = runCommand(t, repo, env, "analyze", "HEAD", "--output", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "AlreadyExists")

	out, err = runCommand(t, repo, env, "show", "HEAD", "--output", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"language": "Go"`)
	assert.Contains(t, out, `"quality": "VeryGood"`)

	out, err = runCommand(t, repo, env, "list", "--output", "csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 2)

	out, err = runCommand(t, repo, env, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Analyses: 1")
}

func TestAnalyzeUnknownCommitFails(t *testing.T) {
	ollama := newFakeOllama(t)
	repo := newRepo(t)
	env := []string{
		"CLEANSCORE_OLLAMA_URL=" + ollama.URL,
		"CLEANSCORE_STORE_BACKEND=none",
	}

	_, err := runCommand(t, repo, env, "analyze", "0000000000000000000000000000000000000000")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, "..", nil, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "cleanscore")
}
