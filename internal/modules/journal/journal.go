package journal

import (
	"apireq-migrate/internal/models"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one submitted record as stored in the journal.
type Entry struct {
	ID           int64         `json:"id" yaml:"id"`
	RunID        string        `json:"run_id" yaml:"run_id"`
	RecordID     int64         `json:"record_id" yaml:"record_id"`
	Name         string        `json:"name" yaml:"name"`
	URL          string        `json:"url" yaml:"url"`
	StatusCode   int           `json:"status_code" yaml:"status_code"`
	Success      bool          `json:"success" yaml:"success"`
	ResponseBody string        `json:"response_body,omitempty" yaml:"response_body,omitempty"`
	Duration     time.Duration `json:"duration" yaml:"duration"`
	Error        string        `json:"error,omitempty" yaml:"error,omitempty"`
	Timestamp    time.Time     `json:"timestamp" yaml:"timestamp"`
}

// FromResult converts a submission result into a journal entry for runID.
func FromResult(runID string, r models.Result) Entry {
	e := Entry{
		RunID:        runID,
		RecordID:     r.RecordID,
		Name:         r.Name,
		URL:          r.URL,
		StatusCode:   r.StatusCode,
		Success:      r.Success(),
		ResponseBody: string(r.Body),
		Duration:     r.Duration,
		Timestamp:    time.Now(),
	}
	if r.Error != nil {
		e.Error = r.Error.Error()
	}
	return e
}

// Store keeps import results in a SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the journal database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening journal db: %w", err)
	}
	// one connection, so ":memory:" databases are shared across calls
	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS imports (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id        TEXT NOT NULL,
			record_id     INTEGER NOT NULL,
			name          TEXT,
			url           TEXT,
			status_code   INTEGER,
			success       INTEGER NOT NULL,
			response_body TEXT,
			duration_ns   INTEGER,
			error         TEXT,
			timestamp     TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_imports_run ON imports(run_id);
	`)
	if err != nil {
		return fmt.Errorf("creating imports table: %w", err)
	}
	return nil
}

// Add inserts a new journal entry.
func (s *Store) Add(e Entry) (int64, error) {
	result, err := s.db.Exec(`
		INSERT INTO imports (run_id, record_id, name, url, status_code, success, response_body, duration_ns, error, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.RecordID, e.Name, e.URL, e.StatusCode, e.Success,
		e.ResponseBody, e.Duration.Nanoseconds(), e.Error,
		e.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting journal entry: %w", err)
	}
	return result.LastInsertId()
}

// List returns the most recent entries, newest first.
func (s *Store) List(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, run_id, record_id, name, url, status_code, success, response_body, duration_ns, error, timestamp
		FROM imports
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var durationNs int64
		var ts string
		err := rows.Scan(&e.ID, &e.RunID, &e.RecordID, &e.Name, &e.URL, &e.StatusCode,
			&e.Success, &e.ResponseBody, &durationNs, &e.Error, &ts)
		if err != nil {
			return nil, fmt.Errorf("scanning journal row: %w", err)
		}
		e.Duration = time.Duration(durationNs)
		e.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parsing journal timestamp %q: %w", ts, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
