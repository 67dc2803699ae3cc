package contract

import (
	"context"
	"time"

	"github.com/huangsam/cleanscore/schema"
	"github.com/stretchr/testify/mock"
)

// MockGitClient is a mock implementation of GitClient for testing.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// Run implements the GitClient interface.
func (m *MockGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	mockArgs := []any{ctx, repoPath}
	for _, arg := range args {
		mockArgs = append(mockArgs, arg)
	}
	ret := m.Called(mockArgs...)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// GetRepoRoot implements the GitClient interface.
func (m *MockGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	ret := m.Called(ctx, contextPath)
	return ret.String(0), ret.Error(1)
}

// GetCommitByID implements the GitClient interface.
func (m *MockGitClient) GetCommitByID(ctx context.Context, repoPath string, commitID string) (*schema.CommitData, error) {
	ret := m.Called(ctx, repoPath, commitID)
	commit, _ := ret.Get(0).(*schema.CommitData)
	return commit, ret.Error(1)
}

// GetCommitChanges implements the GitClient interface.
func (m *MockGitClient) GetCommitChanges(ctx context.Context, repoPath string, commitID string) ([]schema.FileChange, error) {
	ret := m.Called(ctx, repoPath, commitID)
	changes, _ := ret.Get(0).([]schema.FileChange)
	return changes, ret.Error(1)
}

// GetCommitsByPeriod implements the GitClient interface.
func (m *MockGitClient) GetCommitsByPeriod(ctx context.Context, repoPath string, since, until time.Time) ([]schema.CommitData, error) {
	ret := m.Called(ctx, repoPath, since, until)
	commits, _ := ret.Get(0).([]schema.CommitData)
	return commits, ret.Error(1)
}

// MockLLMService is a mock implementation of LLMService for testing.
type MockLLMService struct {
	mock.Mock
}

var _ LLMService = &MockLLMService{} // Compile-time check

// AnalyzeFile implements the LLMService interface.
func (m *MockLLMService) AnalyzeFile(ctx context.Context, content string) (schema.FileAssessment, error) {
	ret := m.Called(ctx, content)
	assessment, _ := ret.Get(0).(schema.FileAssessment)
	return assessment, ret.Error(1)
}

// GenerateSuggestions implements the LLMService interface.
func (m *MockLLMService) GenerateSuggestions(ctx context.Context, content string, rating schema.Rating) []schema.Suggestion {
	ret := m.Called(ctx, content, rating)
	suggestions, _ := ret.Get(0).([]schema.Suggestion)
	return suggestions
}

// MockModelProber is a mock implementation of ModelProber for testing.
type MockModelProber struct {
	mock.Mock
}

var _ ModelProber = &MockModelProber{} // Compile-time check

// CheckHealth implements the ModelProber interface.
func (m *MockModelProber) CheckHealth(ctx context.Context) schema.OllamaStatus {
	ret := m.Called(ctx)
	status, _ := ret.Get(0).(schema.OllamaStatus)
	return status
}
