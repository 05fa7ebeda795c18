// Package store archives pipeline runs and their lag tables in SQLite so that
// repeated analyses of the same experiment can be compared later.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"twohit/internal/pairing"
	"twohit/internal/table"
)

//go:embed schema.sql
var schemaSQL string

var pragmas = []string{
	"PRAGMA busy_timeout=5000",
	"PRAGMA foreign_keys=ON",
	"PRAGMA synchronous=NORMAL",
}

// Run is one archived pipeline invocation.
type Run struct {
	ID           string
	SignalPath   string
	OverlapPath  string
	SignalLabel  string
	OverlapLabel string
	Policy       string
	Paired       int
	Skipped      int
	MeanDt       sql.NullFloat64
	MedianDt     sql.NullFloat64
	CreatedAt    time.Time
}

// Lag is one archived row of a lag table.
type Lag struct {
	ID int
	T1 float64
	T2 float64
	Dt float64
}

type Store struct {
	db *sql.DB
}

// Open creates or opens the archive at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// foreign_keys is per connection.
	db.SetMaxOpenConns(1)
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("store: %s: %w", p, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// RecordRun inserts run and every row of lags in one transaction. An empty
// run.ID is replaced by a fresh UUID and a zero CreatedAt by the current
// time; both are written back into run.
func (s *Store) RecordRun(ctx context.Context, run *Run, lags *table.Table) (err error) {
	idx, err := lags.Indices(pairing.ColID, pairing.ColT1, pairing.ColT2, pairing.ColDelta)
	if err != nil {
		return err
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, ignoreDone(tx.Rollback()))
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (
			run_id, signal_path, overlap_path, signal_label, overlap_label,
			policy, paired, skipped, mean_dt, median_dt, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.SignalPath, run.OverlapPath, run.SignalLabel, run.OverlapLabel,
		run.Policy, run.Paired, run.Skipped, run.MeanDt, run.MedianDt, run.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("store: insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO lags (run_id, id, t1, t2, dt) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("store: prepare lag insert: %w", err)
	}
	defer stmt.Close()
	for _, row := range lags.Rows {
		if _, err = stmt.ExecContext(ctx, run.ID, int64(row[idx[0]]), row[idx[1]], row[idx[2]], row[idx[3]]); err != nil {
			return fmt.Errorf("store: insert lag: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

func ignoreDone(err error) error {
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

// Runs lists archived runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, signal_path, overlap_path, signal_label, overlap_label,
		       policy, paired, skipped, mean_dt, median_dt, created_at
		FROM runs ORDER BY created_at DESC, run_id`)
	if err != nil {
		return nil, fmt.Errorf("store: query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var created int64
		if err := rows.Scan(&r.ID, &r.SignalPath, &r.OverlapPath, &r.SignalLabel, &r.OverlapLabel,
			&r.Policy, &r.Paired, &r.Skipped, &r.MeanDt, &r.MedianDt, &created); err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		r.CreatedAt = time.Unix(0, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Lags returns the archived lag rows of one run in ID order.
func (s *Store) Lags(ctx context.Context, runID string) ([]Lag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, t1, t2, dt FROM lags WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("store: query lags: %w", err)
	}
	defer rows.Close()

	var out []Lag
	for rows.Next() {
		var l Lag
		if err := rows.Scan(&l.ID, &l.T1, &l.T2, &l.Dt); err != nil {
			return nil, fmt.Errorf("store: scan lag: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
