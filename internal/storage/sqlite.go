package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteLog implements QueryLog using SQLite.
type SQLiteLog struct {
	db   *sql.DB
	path string
}

// NewSQLiteLog opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteLog(dbPath string) (*SQLiteLog, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteLog{db: db, path: dbPath}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS search_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		site TEXT NOT NULL,
		query TEXT NOT NULL,
		page INTEGER NOT NULL,
		total INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_search_log_site ON search_log(site);
	CREATE INDEX IF NOT EXISTS idx_search_log_created_at ON search_log(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// Record inserts e. A zero At is stamped with the current time.
func (s *SQLiteLog) Record(ctx context.Context, e Entry) error {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO search_log (site, query, page, total, failed, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Site, e.Query, e.Page, e.Total, e.Failed, e.Duration.Milliseconds(), e.At.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record search: %w", err)
	}
	return nil
}

// Stats reports totals and the top queries. The match-all query is not counted as a top query.
func (s *SQLiteLog) Stats(ctx context.Context, site string, top int) (*Stats, error) {
	where, args := "", []interface{}{}
	if site != "" {
		where, args = "WHERE site = ?", append(args, site)
	}

	var st Stats
	var avg sql.NullFloat64
	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(failed), 0), AVG(duration_ms) FROM search_log `+where, args...)
	if err := row.Scan(&st.Searches, &st.Failures, &avg); err != nil {
		return nil, fmt.Errorf("failed to read search stats: %w", err)
	}
	st.AvgMillis = avg.Float64

	if top > 0 {
		cond := "WHERE query != '*'"
		if site != "" {
			cond += " AND site = ?"
		}
		rows, err := s.db.QueryContext(ctx,
			`SELECT query, COUNT(*) AS n FROM search_log `+cond+`
			 GROUP BY query ORDER BY n DESC, query ASC LIMIT ?`,
			append(args, top)...)
		if err != nil {
			return nil, fmt.Errorf("failed to read top queries: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var qc QueryCount
			if err := rows.Scan(&qc.Query, &qc.Count); err != nil {
				return nil, err
			}
			st.TopQueries = append(st.TopQueries, qc)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}

	size, err := s.SizeBytes()
	if err != nil {
		return nil, err
	}
	st.SizeBytes = size
	return &st, nil
}

// SizeBytes returns the on-disk size of the database including its WAL files.
// Files that do not exist count as zero.
func (s *SQLiteLog) SizeBytes() (int64, error) {
	var total int64
	for _, p := range []string{s.path, s.path + "-wal", s.path + "-shm"} {
		info, err := os.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return 0, err
		}
		total += info.Size()
	}
	return total, nil
}

// Close closes the database connection.
func (s *SQLiteLog) Close() error {
	return s.db.Close()
}
