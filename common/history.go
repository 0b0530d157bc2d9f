package common

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// RunStatus is the final state of a pipeline run
type RunStatus string

const (
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// fixed width so started_at sorts lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run is one recorded pipeline execution
type Run struct {
	ID        string    `json:"id"`
	Company   string    `json:"company"`
	Status    RunStatus `json:"status"`
	OutputDir string    `json:"output_dir"`
	VideoPath string    `json:"video_path,omitempty"`
	Slides    int       `json:"slides"`
	Failed    int       `json:"failed"`
	Error     string    `json:"error,omitempty"`
	StartedAt time.Time `json:"started_at"`
	Duration  float64   `json:"duration_seconds"`
}

// History records pipeline runs in a SQLite database
type History struct {
	db *sql.DB
}

// OpenHistory opens (or creates) the history database at path
func OpenHistory(path string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("history: mkdir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id         TEXT PRIMARY KEY,
		company    TEXT NOT NULL,
		status     TEXT NOT NULL,
		output_dir TEXT,
		video_path TEXT,
		slides     INTEGER NOT NULL DEFAULT 0,
		failed     INTEGER NOT NULL DEFAULT 0,
		error      TEXT,
		started_at TEXT NOT NULL,
		duration   REAL NOT NULL DEFAULT 0
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: init schema: %w", err)
	}
	return &History{db: db}, nil
}

// DefaultHistoryPath is the database location under the data dir
func DefaultHistoryPath() string {
	return filepath.Join(DataDir(), "history.db")
}

func (h *History) Close() error {
	return h.db.Close()
}

// Record inserts or replaces a run
func (h *History) Record(ctx context.Context, r Run) error {
	if r.ID == "" {
		return fmt.Errorf("history: run id is required")
	}
	_, err := h.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (id, company, status, output_dir, video_path, slides, failed, error, started_at, duration)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Company, string(r.Status), r.OutputDir, r.VideoPath,
		r.Slides, r.Failed, r.Error, r.StartedAt.UTC().Format(timeLayout), r.Duration,
	)
	if err != nil {
		return fmt.Errorf("history: insert: %w", err)
	}
	return nil
}

// List returns the most recent runs first
func (h *History) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := h.db.QueryContext(ctx,
		`SELECT id, company, status, output_dir, video_path, slides, failed, error, started_at, duration
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		var status, started string
		var outputDir, videoPath, errMsg sql.NullString
		if err := rows.Scan(&r.ID, &r.Company, &status, &outputDir, &videoPath,
			&r.Slides, &r.Failed, &errMsg, &started, &r.Duration); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		r.Status = RunStatus(status)
		r.OutputDir = outputDir.String
		r.VideoPath = videoPath.String
		r.Error = errMsg.String
		r.StartedAt, _ = time.Parse(timeLayout, started)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
