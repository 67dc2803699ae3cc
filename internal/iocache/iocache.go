// Package iocache persists commit analyses in SQL databases.
package iocache

import (
	"sync"

	"github.com/huangsam/cleanscore/internal/contract"
)

// AnalysisStoreManager holds the process-wide analysis store.
type AnalysisStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	analysis     contract.AnalysisStore
}

var _ contract.StoreManager = &AnalysisStoreManager{} // Compile-time check

// GetAnalysisStore returns the analysis AnalysisStore.
func (mgr *AnalysisStoreManager) GetAnalysisStore() contract.AnalysisStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.analysis
}
