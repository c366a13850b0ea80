package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gitattrib/gitattrib/internal/contract"
	"github.com/gitattrib/gitattrib/schema"
)

// Table names for run history tracking.
const (
	runsTable      = "attrib_runs"
	repoStatsTable = "attrib_repo_stats"
)

// HistoryStoreImpl records analysis runs and their per-repository outcomes.
type HistoryStoreImpl struct {
	db       *sql.DB
	backend  schema.DatabaseBackend
	location string
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore creates a new HistoryStore with the specified backend.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	var db *sql.DB
	var err error
	location := connStr

	switch backend {
	case schema.SQLiteBackend:
		if location == "" {
			location = contract.DefaultHistoryDBPath()
		}
		db, err = sql.Open("sqlite", location)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", location, err)
		}
		// A single open connection avoids "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		db, err = sql.Open("mysql", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		db, err = sql.Open("pgx", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}

	case schema.NoneBackend:
		// No-op store for disabled tracking
		return &HistoryStoreImpl{backend: backend}, nil

	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w. Check that the server is running and credentials are valid", backend, err)
	}

	if err := createHistoryTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &HistoryStoreImpl{db: db, backend: backend, location: location}, nil
}

// createHistoryTables creates the run history tables.
func createHistoryTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{runsTable, createRunsTableQuery(backend)},
		{repoStatsTable, createRepoStatsTableQuery(backend)},
	}
	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// createRunsTableQuery returns the CREATE TABLE query for attrib_runs.
func createRunsTableQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(runsTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_repos INT,
				success BOOLEAN,
				settings_json TEXT
			);
		`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_repos INT,
				success BOOLEAN,
				settings_json TEXT
			);
		`, quoted)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_repos INTEGER,
				success INTEGER,
				settings_json TEXT
			);
		`, quoted)
	}
}

// createRepoStatsTableQuery returns the CREATE TABLE query for attrib_repo_stats.
func createRepoStatsTableQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(repoStatsTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				repo_name VARCHAR(255) NOT NULL,
				repo_path VARCHAR(512) NOT NULL,
				analyzed_at DATETIME(6) NOT NULL,
				author_count INT NOT NULL,
				file_count INT NOT NULL,
				line_count INT NOT NULL,
				commit_count INT NOT NULL,
				success BOOLEAN NOT NULL,
				error_text TEXT,
				PRIMARY KEY (run_id, repo_path)
			);
		`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				repo_name TEXT NOT NULL,
				repo_path TEXT NOT NULL,
				analyzed_at TIMESTAMPTZ NOT NULL,
				author_count INT NOT NULL,
				file_count INT NOT NULL,
				line_count INT NOT NULL,
				commit_count INT NOT NULL,
				success BOOLEAN NOT NULL,
				error_text TEXT,
				PRIMARY KEY (run_id, repo_path)
			);
		`, quoted)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				repo_name TEXT NOT NULL,
				repo_path TEXT NOT NULL,
				analyzed_at TEXT NOT NULL,
				author_count INTEGER NOT NULL,
				file_count INTEGER NOT NULL,
				line_count INTEGER NOT NULL,
				commit_count INTEGER NOT NULL,
				success INTEGER NOT NULL,
				error_text TEXT,
				PRIMARY KEY (run_id, repo_path)
			);
		`, quoted)
	}
}

// BeginRun creates a new run row and returns its unique ID.
func (hs *HistoryStoreImpl) BeginRun(startTime time.Time, settings *schema.Settings) (int64, error) {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return 0, nil
	}

	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal settings: %w", err)
	}

	quoted := quoteTableName(runsTable, hs.backend)
	var runID int64
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (start_time, settings_json) VALUES ($1, $2) RETURNING run_id`, quoted)
		err = hs.db.QueryRow(query, startTime, string(settingsJSON)).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (start_time, settings_json) VALUES (?, ?)`, quoted)
		var result sql.Result
		result, err = hs.db.Exec(query, formatTime(startTime, hs.backend), string(settingsJSON))
		if err != nil {
			return 0, fmt.Errorf("failed to insert run: %w", err)
		}
		runID, err = result.LastInsertId()
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// EndRun finalizes the run row with completion data.
func (hs *HistoryStoreImpl) EndRun(runID int64, endTime time.Time, totalRepos int, success bool) error {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil
	}

	startTime, err := hs.runStartTime(runID)
	if err != nil {
		return err
	}
	durationMs := endTime.Sub(startTime).Milliseconds()

	quoted := quoteTableName(runsTable, hs.backend)
	var query string
	var args []any
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`UPDATE %s SET end_time = $1, run_duration_ms = $2, total_repos = $3, success = $4 WHERE run_id = $5`, quoted)
		args = []any{endTime, durationMs, totalRepos, success, runID}
	default: // SQLite and MySQL
		query = fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, total_repos = ?, success = ? WHERE run_id = ?`, quoted)
		args = []any{formatTime(endTime, hs.backend), durationMs, totalRepos, success, runID}
	}
	if _, err := hs.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// runStartTime reads back the stored start time of a run.
func (hs *HistoryStoreImpl) runStartTime(runID int64) (time.Time, error) {
	quoted := quoteTableName(runsTable, hs.backend)
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quoted, placeholder(hs.backend, 1))
	row := hs.db.QueryRow(query, runID)

	if hs.backend == schema.SQLiteBackend {
		var raw string
		if err := row.Scan(&raw); err != nil {
			return time.Time{}, fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
		}
		start, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse start_time: %w", err)
		}
		return start, nil
	}

	var start time.Time
	if err := row.Scan(&start); err != nil {
		return time.Time{}, fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}
	return start, nil
}

// RecordRepoStats stores the aggregated outcome for one repository.
func (hs *HistoryStoreImpl) RecordRepoStats(runID int64, result *schema.RepoResult) error {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil
	}

	var lineCount, commitCount int
	for i := range result.FileStats {
		lineCount += result.FileStats[i].Lines
	}
	for i := range result.AuthorStats {
		commitCount += result.AuthorStats[i].Commits
	}

	var errorText any
	if result.Error != "" {
		errorText = result.Error
	}

	quoted := quoteTableName(repoStatsTable, hs.backend)
	var query string
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`
			INSERT INTO %s (run_id, repo_name, repo_path, analyzed_at, author_count,
			                file_count, line_count, commit_count, success, error_text)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, quoted)
	default: // SQLite and MySQL
		query = fmt.Sprintf(`
			INSERT INTO %s (run_id, repo_name, repo_path, analyzed_at, author_count,
			                file_count, line_count, commit_count, success, error_text)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, quoted)
	}

	args := []any{
		runID, result.Name, result.Path, formatTime(time.Now(), hs.backend),
		len(result.AuthorStats), len(result.FileStats), lineCount, commitCount,
		result.Success, errorText,
	}
	if _, err := hs.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to insert repo stats: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:  hs.backend,
		Location: hs.location,
	}
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return status, nil
	}

	row := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(runsTable, hs.backend)))
	if err := row.Scan(&status.RunCount); err != nil {
		return status, fmt.Errorf("failed to get run count: %w", err)
	}
	row = hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(repoStatsTable, hs.backend)))
	if err := row.Scan(&status.RepoCount); err != nil {
		return status, fmt.Errorf("failed to get repo count: %w", err)
	}

	if status.RunCount > 0 {
		query := fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id DESC LIMIT 1", quoteTableName(runsTable, hs.backend))
		row = hs.db.QueryRow(query)
		if hs.backend == schema.SQLiteBackend {
			var raw string
			if err := row.Scan(&raw); err != nil {
				return status, fmt.Errorf("failed to get last run time: %w", err)
			}
			last, err := time.Parse(time.RFC3339Nano, raw)
			if err != nil {
				return status, fmt.Errorf("failed to parse last run time: %w", err)
			}
			status.LastRun = &last
		} else {
			var last time.Time
			if err := row.Scan(&last); err != nil {
				return status, fmt.Errorf("failed to get last run time: %w", err)
			}
			status.LastRun = &last
		}
	}

	return status, nil
}

// GetAllRuns retrieves all run rows, oldest first.
func (hs *HistoryStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	quoted := quoteTableName(runsTable, hs.backend)
	query := fmt.Sprintf("SELECT run_id, start_time, end_time, run_duration_ms, total_repos, success, settings_json FROM %s ORDER BY run_id", quoted)

	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		if hs.backend == schema.SQLiteBackend {
			var startRaw string
			var endRaw *string
			if err := rows.Scan(&record.RunID, &startRaw, &endRaw, &record.RunDurationMs, &record.TotalRepos, &record.Success, &record.SettingsJSON); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
			record.StartTime, err = time.Parse(time.RFC3339Nano, startRaw)
			if err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			if endRaw != nil {
				end, err := time.Parse(time.RFC3339Nano, *endRaw)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &end
			}
		} else {
			if err := rows.Scan(&record.RunID, &record.StartTime, &record.EndTime, &record.RunDurationMs, &record.TotalRepos, &record.Success, &record.SettingsJSON); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllRepoStats retrieves all per-repository rows, ordered by run and path.
func (hs *HistoryStoreImpl) GetAllRepoStats() ([]schema.RepoStatRecord, error) {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	quoted := quoteTableName(repoStatsTable, hs.backend)
	query := fmt.Sprintf(`SELECT run_id, repo_name, repo_path, analyzed_at, author_count,
    file_count, line_count, commit_count, success, error_text
    FROM %s ORDER BY run_id, repo_path`, quoted)

	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query repo stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RepoStatRecord
	for rows.Next() {
		var record schema.RepoStatRecord
		if hs.backend == schema.SQLiteBackend {
			var analyzedRaw string
			if err := rows.Scan(&record.RunID, &record.RepoName, &record.RepoPath, &analyzedRaw,
				&record.AuthorCount, &record.FileCount, &record.LineCount, &record.CommitCount,
				&record.Success, &record.ErrorText); err != nil {
				return nil, fmt.Errorf("failed to scan repo stats: %w", err)
			}
			record.AnalyzedAt, err = time.Parse(time.RFC3339Nano, analyzedRaw)
			if err != nil {
				return nil, fmt.Errorf("failed to parse analyzed_at: %w", err)
			}
		} else {
			if err := rows.Scan(&record.RunID, &record.RepoName, &record.RepoPath, &record.AnalyzedAt,
				&record.AuthorCount, &record.FileCount, &record.LineCount, &record.CommitCount,
				&record.Success, &record.ErrorText); err != nil {
				return nil, fmt.Errorf("failed to scan repo stats: %w", err)
			}
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating repo stats: %w", err)
	}
	return results, nil
}

// formatTime converts a time.Time to the storable form for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	if backend == schema.SQLiteBackend {
		return t.Format(time.RFC3339Nano)
	}
	return t
}
