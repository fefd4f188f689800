// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger records every run and every row outcome in a SQLite
// database in the output directory, so an operator can see who was mailed
// and when.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/hours-mailer/pkg/types"
)

// DBFile is the ledger file name inside the output directory.
const DBFile = "ledger.db"

const defaultLimit = 50

// Store manages the ledger database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates dir/ledger.db and its schema.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dir, DBFile)+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			input TEXT NOT NULL,
			dry_run INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS deliveries (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			row_num INTEGER NOT NULL,
			name TEXT NOT NULL,
			email TEXT,
			state TEXT NOT NULL,
			error TEXT,
			pdf_path TEXT,
			recorded_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_deliveries_name ON deliveries(name)`,
		`CREATE INDEX IF NOT EXISTS idx_deliveries_run ON deliveries(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// BeginRun registers a new run and returns its ID.
func (s *Store) BeginRun(ctx context.Context, input string, dryRun bool) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, input, dry_run) VALUES (?, ?, ?, ?)`,
		id, s.timestamp(), input, dryRun,
	)
	if err != nil {
		return "", fmt.Errorf("recording run: %w", err)
	}
	return id, nil
}

// Record stores the final outcome of one row.
func (s *Store) Record(ctx context.Context, runID string, o types.RowOutcome) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO deliveries (run_id, row_num, name, email, state, error, pdf_path, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, o.Row, o.Name, o.Email, string(o.State), o.Error, o.Artifacts.PDFPath, s.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("recording row %d (%s): %w", o.Row, o.Name, err)
	}
	return nil
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

// Delivery is one recorded row outcome.
type Delivery struct {
	RunID      string    `json:"run_id" yaml:"run_id"`
	DryRun     bool      `json:"dry_run" yaml:"dry_run"`
	Row        int       `json:"row" yaml:"row"`
	Name       string    `json:"name" yaml:"name"`
	Email      string    `json:"email,omitempty" yaml:"email,omitempty"`
	State      string    `json:"state" yaml:"state"`
	Error      string    `json:"error,omitempty" yaml:"error,omitempty"`
	PDFPath    string    `json:"pdf_path,omitempty" yaml:"pdf_path,omitempty"`
	RecordedAt time.Time `json:"recorded_at" yaml:"recorded_at"`
}

// Query filters Deliveries. An empty Name matches everyone; a non-positive
// Limit uses the default of 50.
type Query struct {
	Name  string
	Limit int
}

// Deliveries returns the most recent deliveries first.
func (s *Store) Deliveries(ctx context.Context, q Query) ([]Delivery, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	query := `SELECT d.run_id, r.dry_run, d.row_num, d.name, d.email, d.state, d.error, d.pdf_path, d.recorded_at
		FROM deliveries d JOIN runs r ON r.id = d.run_id`
	var args []any
	if q.Name != "" {
		query += ` WHERE d.name = ?`
		args = append(args, q.Name)
	}
	query += ` ORDER BY d.recorded_at DESC, d.rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying deliveries: %w", err)
	}
	defer rows.Close()

	var out []Delivery
	for rows.Next() {
		var (
			d                   Delivery
			email, errText, pdf sql.NullString
			recorded            string
		)
		if err := rows.Scan(&d.RunID, &d.DryRun, &d.Row, &d.Name, &email, &d.State, &errText, &pdf, &recorded); err != nil {
			return nil, fmt.Errorf("scanning delivery: %w", err)
		}
		d.Email, d.Error, d.PDFPath = email.String, errText.String, pdf.String
		if t, err := time.Parse(time.RFC3339Nano, recorded); err == nil {
			d.RecordedAt = t
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
