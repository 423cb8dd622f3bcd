package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ArchivedResult is one indexed tool-result file. The file itself
// lives in the results directory; the index makes runs queryable by
// tool and session after the fact.
type ArchivedResult struct {
	ID         int64
	SessionID  string
	Source     string
	Tool       string
	Filename   string
	ResultSize int
	Summarized bool
	CreatedAt  time.Time
}

type ArchiveIndex struct {
	db *sql.DB
}

func NewArchiveIndex(dataDir string) (*ArchiveIndex, error) {
	dbPath := filepath.Join(dataDir, "results.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	idx := &ArchiveIndex{db: db}

	if err := idx.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return idx, nil
}

func (idx *ArchiveIndex) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS archived_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		source TEXT NOT NULL,
		tool TEXT NOT NULL,
		filename TEXT NOT NULL,
		result_size INTEGER NOT NULL,
		summarized INTEGER NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_archived_results_session ON archived_results(session_id);
	CREATE INDEX IF NOT EXISTS idx_archived_results_tool ON archived_results(tool);
	`

	_, err := idx.db.Exec(schema)
	return err
}

// Record inserts one archive entry and returns its row ID.
func (idx *ArchiveIndex) Record(rec ArchivedResult) (int64, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	result, err := idx.db.Exec(`
		INSERT INTO archived_results (session_id, source, tool, filename, result_size, summarized, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID, rec.Source, rec.Tool, rec.Filename, rec.ResultSize, rec.Summarized, rec.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to record archived result: %w", err)
	}

	return result.LastInsertId()
}

// BySession returns the archive entries for one session, oldest first.
func (idx *ArchiveIndex) BySession(sessionID string) ([]ArchivedResult, error) {
	rows, err := idx.db.Query(`
		SELECT id, session_id, source, tool, filename, result_size, summarized, created_at
		FROM archived_results WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query archived results: %w", err)
	}
	defer rows.Close()

	return scanArchivedResults(rows)
}

// ByTool returns the most recent entries for one tool across sessions.
func (idx *ArchiveIndex) ByTool(tool string, limit int) ([]ArchivedResult, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := idx.db.Query(`
		SELECT id, session_id, source, tool, filename, result_size, summarized, created_at
		FROM archived_results WHERE tool = ? ORDER BY id DESC LIMIT ?`,
		tool, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query archived results: %w", err)
	}
	defer rows.Close()

	return scanArchivedResults(rows)
}

// Recent returns the newest entries across all sessions and tools.
func (idx *ArchiveIndex) Recent(limit int) ([]ArchivedResult, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := idx.db.Query(`
		SELECT id, session_id, source, tool, filename, result_size, summarized, created_at
		FROM archived_results ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query archived results: %w", err)
	}
	defer rows.Close()

	return scanArchivedResults(rows)
}

func scanArchivedResults(rows *sql.Rows) ([]ArchivedResult, error) {
	var results []ArchivedResult
	for rows.Next() {
		var rec ArchivedResult
		if err := rows.Scan(
			&rec.ID, &rec.SessionID, &rec.Source, &rec.Tool,
			&rec.Filename, &rec.ResultSize, &rec.Summarized, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan archived result: %w", err)
		}
		results = append(results, rec)
	}
	return results, rows.Err()
}

func (idx *ArchiveIndex) Close() error {
	return idx.db.Close()
}
