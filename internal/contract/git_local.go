package contract

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/cleanscore/schema"
)

// Separators used in git --format strings so that free text never splits a record.
const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"
)

const commitFormat = "--format=%H%x1f%an%x1f%ae%x1f%aI%x1f%B"

// LocalGitClient implements the GitClient interface by executing the
// local 'git' binary installed on the machine.
type LocalGitClient struct{}

var _ GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{}
}

// Run executes a git command and returns its stdout output.
func (c *LocalGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, fmt.Errorf("git %s failed in %q: %s. If this is not a Git repository, verify the path or run 'git init'", args[0], repoPath, stderr)
	} else if err != nil {
		return nil, fmt.Errorf("git command failed: %w. Ensure Git is installed and available on your PATH", err)
	}
	return out, nil
}

// GetRepoRoot implements the GitClient interface.
func (c *LocalGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	out, err := c.Run(ctx, contextPath, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// GetCommitByID implements the GitClient interface.
func (c *LocalGitClient) GetCommitByID(ctx context.Context, repoPath string, commitID string) (*schema.CommitData, error) {
	if strings.TrimSpace(commitID) == "" || strings.HasPrefix(commitID, "-") {
		return nil, fmt.Errorf("%w: %q", schema.ErrCommitNotFound, commitID)
	}
	if _, err := c.Run(ctx, repoPath, "rev-parse", "--verify", "--quiet", commitID+"^{commit}"); err != nil {
		return nil, fmt.Errorf("%w: %s", schema.ErrCommitNotFound, commitID)
	}
	out, err := c.Run(ctx, repoPath, "show", "-s", "--no-color", commitFormat, commitID)
	if err != nil {
		return nil, err
	}
	commit, err := parseCommitRecord(string(out))
	if err != nil {
		return nil, err
	}
	return &commit, nil
}

// GetCommitsByPeriod implements the GitClient interface.
func (c *LocalGitClient) GetCommitsByPeriod(ctx context.Context, repoPath string, since, until time.Time) ([]schema.CommitData, error) {
	args := []string{"log", "--no-color", commitFormat + recordSep}
	if !since.IsZero() {
		args = append(args, "--since="+since.Format(DateTimeFormat))
	}
	if !until.IsZero() {
		args = append(args, "--until="+until.Format(DateTimeFormat))
	}
	out, err := c.Run(ctx, repoPath, args...)
	if err != nil {
		return nil, err
	}

	var commits []schema.CommitData
	for rec := range strings.SplitSeq(string(out), recordSep) {
		if strings.TrimSpace(rec) == "" {
			continue
		}
		commit, err := parseCommitRecord(rec)
		if err != nil {
			return nil, err
		}
		commits = append(commits, commit)
	}
	return commits, nil
}

// parseCommitRecord parses one commitFormat record.
func parseCommitRecord(rec string) (schema.CommitData, error) {
	parts := strings.SplitN(strings.TrimLeft(rec, "\n"), fieldSep, 5)
	if len(parts) != 5 {
		return schema.CommitData{}, fmt.Errorf("unexpected git commit format: %q", rec)
	}
	date, err := time.Parse(time.RFC3339, strings.TrimSpace(parts[3]))
	if err != nil {
		return schema.CommitData{}, fmt.Errorf("failed to parse commit date %q: %w", parts[3], err)
	}
	message := strings.TrimSpace(parts[4])
	short, _, _ := strings.Cut(message, "\n")
	return schema.CommitData{
		ID:           strings.TrimSpace(parts[0]),
		Author:       parts[1],
		Email:        parts[2],
		Date:         date,
		Message:      message,
		MessageShort: strings.TrimSpace(short),
	}, nil
}

// GetCommitChanges implements the GitClient interface.
// A root commit reports its whole tree as added; other commits are diffed against their first parent.
func (c *LocalGitClient) GetCommitChanges(ctx context.Context, repoPath string, commitID string) ([]schema.FileChange, error) {
	out, err := c.Run(ctx, repoPath, "rev-list", "--parents", "-n", "1", commitID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", schema.ErrCommitNotFound, commitID)
	}
	fields := strings.Fields(string(out))
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: %s", schema.ErrCommitNotFound, commitID)
	}
	sha := fields[0]
	if len(fields) == 1 {
		return c.rootChanges(ctx, repoPath, sha)
	}
	return c.diffChanges(ctx, repoPath, fields[1], sha)
}

func (c *LocalGitClient) rootChanges(ctx context.Context, repoPath, sha string) ([]schema.FileChange, error) {
	out, err := c.Run(ctx, repoPath, "ls-tree", "-r", "--name-only", "-z", sha)
	if err != nil {
		return nil, err
	}

	var changes []schema.FileChange
	for path := range strings.SplitSeq(string(out), "\x00") {
		if path == "" {
			continue
		}
		change := schema.FileChange{
			Path:         path,
			Language:     DetermineLanguage(path),
			Kind:         schema.ChangeAdded,
			IsSourceCode: IsSourceCode(path),
		}
		if change.IsSourceCode {
			blob, err := c.Run(ctx, repoPath, "show", sha+":"+path)
			if err != nil {
				return nil, err
			}
			change.Content = string(blob)
			change.AddedLines = len(strings.Split(change.Content, "\n"))
		}
		changes = append(changes, change)
	}
	return changes, nil
}

func (c *LocalGitClient) diffChanges(ctx context.Context, repoPath, parent, sha string) ([]schema.FileChange, error) {
	statusOut, err := c.Run(ctx, repoPath, "diff", "--no-color", "--name-status", "-M", "-z", parent, sha)
	if err != nil {
		return nil, err
	}
	numstatOut, err := c.Run(ctx, repoPath, "diff", "--no-color", "--numstat", "-M", "-z", parent, sha)
	if err != nil {
		return nil, err
	}
	counts := parseNumstat(string(numstatOut))

	var changes []schema.FileChange
	for _, entry := range parseNameStatus(string(statusOut)) {
		change := schema.FileChange{
			Path:         entry.path,
			Language:     DetermineLanguage(entry.path),
			Kind:         entry.kind,
			IsSourceCode: IsSourceCode(entry.path),
		}
		if n, ok := counts[entry.path]; ok {
			change.AddedLines, change.RemovedLines = n[0], n[1]
		}
		if change.IsSourceCode && entry.kind != schema.ChangeDeleted {
			paths := []string{entry.path}
			if entry.oldPath != "" {
				paths = []string{entry.oldPath, entry.path}
			}
			args := append([]string{"diff", "--no-color", "--no-ext-diff", "-M", "-U3", parent, sha, "--"}, paths...)
			patch, err := c.Run(ctx, repoPath, args...)
			if err != nil {
				return nil, err
			}
			change.Content = ExtractHunks(string(patch))
		}
		changes = append(changes, change)
	}
	return changes, nil
}

type nameStatusEntry struct {
	kind    schema.ChangeKind
	path    string
	oldPath string
}

// parseNameStatus parses `git diff --name-status -z` output.
func parseNameStatus(out string) []nameStatusEntry {
	tokens := strings.Split(out, "\x00")
	var entries []nameStatusEntry
	for i := 0; i < len(tokens); {
		status := tokens[i]
		if status == "" {
			i++
			continue
		}
		switch status[0] {
		case 'R', 'C':
			if i+2 >= len(tokens) {
				return entries
			}
			kind := schema.ChangeRenamed
			if status[0] == 'C' {
				kind = schema.ChangeAdded
			}
			entries = append(entries, nameStatusEntry{kind: kind, oldPath: tokens[i+1], path: tokens[i+2]})
			i += 3
		default:
			if i+1 >= len(tokens) {
				return entries
			}
			entries = append(entries, nameStatusEntry{kind: changeKindFor(status[0]), path: tokens[i+1]})
			i += 2
		}
	}
	return entries
}

func changeKindFor(status byte) schema.ChangeKind {
	switch status {
	case 'A':
		return schema.ChangeAdded
	case 'D':
		return schema.ChangeDeleted
	default:
		return schema.ChangeModified
	}
}

// parseNumstat parses `git diff --numstat -z` output into path -> [added, removed].
// Binary files report "-" and count as zero.
func parseNumstat(out string) map[string][2]int {
	tokens := strings.Split(out, "\x00")
	counts := make(map[string][2]int)
	for i := 0; i < len(tokens); i++ {
		parts := strings.SplitN(tokens[i], "\t", 3)
		if len(parts) != 3 {
			continue
		}
		path := parts[2]
		if path == "" && i+2 < len(tokens) {
			path = tokens[i+2] // renames: "<a>\t<r>\t\0old\0new"
			i += 2
		}
		added, _ := strconv.Atoi(parts[0])
		removed, _ := strconv.Atoi(parts[1])
		counts[path] = [2]int{added, removed}
	}
	return counts
}

// ExtractHunks keeps only the hunk headers and hunk lines of a unified diff.
func ExtractHunks(patch string) string {
	var kept []string
	inHunk := false
	for line := range strings.SplitSeq(patch, "\n") {
		if strings.HasPrefix(line, "@@") {
			inHunk = true
			kept = append(kept, line)
			continue
		}
		if !inHunk {
			continue
		}
		if strings.HasPrefix(line, "diff --git") {
			inHunk = false
			continue
		}
		if strings.HasPrefix(line, "+") || strings.HasPrefix(line, "-") ||
			strings.HasPrefix(line, " ") || strings.HasPrefix(line, `\`) {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
