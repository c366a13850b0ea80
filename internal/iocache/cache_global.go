package iocache

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/gitattrib/gitattrib/internal/contract"
	"github.com/gitattrib/gitattrib/schema"
)

// resultTable is the name of the table for repository result caching.
const resultTable = "result_cache"

// Global Manager instance for main logic.
var (
	Manager   = &CacheStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// InitCaching initializes the global cache manager with separate result and
// history stores. Either backend can be NoneBackend to disable that store.
func InitCaching(st *schema.Settings) error {
	var initErr error

	initOnce.Do(func() {
		// This function body runs exactly once, even with concurrent calls.
		resultStore, err := NewCacheStore(resultTable, st.CacheBackend, st.CacheDBConnect)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize result caching: %w", err)
			return
		}

		historyStore, err := NewHistoryStore(st.HistoryBackend, st.HistoryDBConnect)
		if err != nil {
			_ = resultStore.Close()
			initErr = fmt.Errorf("failed to initialize run history: %w", err)
			return
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.results = resultStore
		Manager.history = historyStore
	})

	return initErr
}

// CloseCaching should be called on application shutdown.
func CloseCaching() {
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.results != nil {
			_ = Manager.results.Close()
		}
		if Manager.history != nil {
			_ = Manager.history.Close()
		}
	})
}

// ClearCache clears the result cache for the specified backend.
// For SQLite, it deletes the database file. For MySQL/PostgreSQL, it drops
// the table. For NoneBackend, it does nothing.
func ClearCache(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			dbFilePath = contract.DefaultCacheDBPath()
		}
		return removeDBFile(dbFilePath)

	case schema.MySQLBackend:
		return dropSQLTable("mysql", connStr, resultTable)

	case schema.PostgreSQLBackend:
		return dropSQLTable("pgx", connStr, resultTable)

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported cache backend for clearing: %s", backend)
	}
}

// ClearHistory clears the run history for the specified backend.
func ClearHistory(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			dbFilePath = contract.DefaultHistoryDBPath()
		}
		return removeDBFile(dbFilePath)

	case schema.MySQLBackend:
		for _, table := range []string{runsTable, repoStatsTable} {
			if err := dropSQLTable("mysql", connStr, table); err != nil {
				return err
			}
		}
		return nil

	case schema.PostgreSQLBackend:
		for _, table := range []string{runsTable, repoStatsTable} {
			if err := dropSQLTable("pgx", connStr, table); err != nil {
				return err
			}
		}
		return nil

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported history backend for clearing: %s", backend)
	}
}

// removeDBFile deletes a SQLite database file, ignoring a missing file.
func removeDBFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove SQLite database file %s: %w", path, err)
	}
	return nil
}

// dropSQLTable connects to the SQL database and drops the table if it exists.
func dropSQLTable(driverName, connStr, tableName string) error {
	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", driverName, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", driverName, err)
	}

	if _, err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", tableName)); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", tableName, err)
	}
	return nil
}
