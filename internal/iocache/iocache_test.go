package iocache

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/gitattrib/gitattrib/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCaching(t *testing.T) {
	t.Run("sqlite setup", func(t *testing.T) {
		initOnce = sync.Once{}  // Reset for test
		closeOnce = sync.Once{} // Reset for test

		dir := t.TempDir()
		st := schema.DefaultSettings()
		st.CacheBackend = schema.SQLiteBackend
		st.CacheDBConnect = filepath.Join(dir, "cache.db")
		st.HistoryBackend = schema.SQLiteBackend
		st.HistoryDBConnect = filepath.Join(dir, "history.db")

		require.NoError(t, InitCaching(&st))
		assert.NotNil(t, Manager.GetResultStore())
		assert.NotNil(t, Manager.GetHistoryStore())
		CloseCaching()
	})

	t.Run("idempotent setup", func(t *testing.T) {
		initOnce = sync.Once{}  // Reset for test
		closeOnce = sync.Once{} // Reset for test

		st := schema.DefaultSettings()
		assert.NoError(t, InitCaching(&st))
		assert.NoError(t, InitCaching(&st))

		CloseCaching()
		CloseCaching()
	})

	t.Run("none backends", func(t *testing.T) {
		initOnce = sync.Once{}  // Reset for test
		closeOnce = sync.Once{} // Reset for test

		st := schema.DefaultSettings()
		require.NoError(t, InitCaching(&st))
		store := Manager.GetResultStore()
		require.NotNil(t, store)

		status, err := store.GetStatus()
		require.NoError(t, err)
		assert.Equal(t, schema.NoneBackend, status.Backend)
		CloseCaching()
	})
}

func TestClearCacheSQLiteRemovesFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	store, err := NewCacheStore(resultTable, schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	assert.NoError(t, ClearCache(schema.SQLiteBackend, dbPath, ""))
	// Clearing a missing file is not an error.
	assert.NoError(t, ClearCache(schema.SQLiteBackend, dbPath, ""))
}

func TestClearHistoryNoneBackendIsNoop(t *testing.T) {
	assert.NoError(t, ClearHistory(schema.NoneBackend, "", ""))
}
