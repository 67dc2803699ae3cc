package iocache

import (
	"context"

	"github.com/huangsam/cleanscore/internal/contract"
	"github.com/huangsam/cleanscore/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetAnalysisStore implements the StoreManager interface.
func (m *MockStoreManager) GetAnalysisStore() contract.AnalysisStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.AnalysisStore)
	return store
}

// MockAnalysisStore is a mock implementation of AnalysisStore for testing.
type MockAnalysisStore struct {
	mock.Mock
}

var _ contract.AnalysisStore = &MockAnalysisStore{} // Compile-time check

// GetByID implements the AnalysisStore interface.
func (m *MockAnalysisStore) GetByID(ctx context.Context, id string) (*schema.CommitAnalysis, error) {
	ret := m.Called(ctx, id)
	analysis, _ := ret.Get(0).(*schema.CommitAnalysis)
	return analysis, ret.Error(1)
}

// GetByCommitID implements the AnalysisStore interface.
func (m *MockAnalysisStore) GetByCommitID(ctx context.Context, commitID string) (*schema.CommitAnalysis, error) {
	ret := m.Called(ctx, commitID)
	analysis, _ := ret.Get(0).(*schema.CommitAnalysis)
	return analysis, ret.Error(1)
}

// Add implements the AnalysisStore interface.
func (m *MockAnalysisStore) Add(ctx context.Context, analysis *schema.CommitAnalysis) error {
	return m.Called(ctx, analysis).Error(0)
}

// List implements the AnalysisStore interface.
func (m *MockAnalysisStore) List(ctx context.Context, filter schema.ListFilter) ([]schema.AnalysisSummary, error) {
	ret := m.Called(ctx, filter)
	summaries, _ := ret.Get(0).([]schema.AnalysisSummary)
	return summaries, ret.Error(1)
}

// Delete implements the AnalysisStore interface.
func (m *MockAnalysisStore) Delete(ctx context.Context, commitID string) error {
	return m.Called(ctx, commitID).Error(0)
}

// GetAllFileRecords implements the AnalysisStore interface.
func (m *MockAnalysisStore) GetAllFileRecords(ctx context.Context) ([]schema.FileRatingRecord, error) {
	ret := m.Called(ctx)
	records, _ := ret.Get(0).([]schema.FileRatingRecord)
	return records, ret.Error(1)
}

// GetStatus implements the AnalysisStore interface.
func (m *MockAnalysisStore) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	ret := m.Called(ctx)
	status, _ := ret.Get(0).(schema.StoreStatus)
	return status, ret.Error(1)
}

// Close implements the AnalysisStore interface.
func (m *MockAnalysisStore) Close() error {
	return m.Called().Error(0)
}
