// Package iocache persists analysis results and run history across invocations.
package iocache

import (
	"sync"

	"github.com/gitattrib/gitattrib/internal/contract"
)

// CacheStoreManager manages the result cache and run-history stores.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	results      contract.CacheStore
	history      contract.HistoryStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetResultStore returns the repository result CacheStore.
func (mgr *CacheStoreManager) GetResultStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.results
}

// GetHistoryStore returns the run HistoryStore.
func (mgr *CacheStoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}
