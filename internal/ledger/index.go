package ledger

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// IndexFilename is the SQLite index created at the root of a dataset.
const IndexFilename = "stimuli.db"

var schema = []string{`
CREATE TABLE IF NOT EXISTS stimuli (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id           TEXT    NOT NULL,
	stimulus         TEXT    NOT NULL,
	set_size         INTEGER NOT NULL,
	target_condition TEXT    NOT NULL,
	img_num          INTEGER NOT NULL,
	root_output_dir  TEXT    NOT NULL,
	img_file         TEXT    NOT NULL,
	meta_file        TEXT    NOT NULL,
	created_at       DATETIME DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE INDEX IF NOT EXISTS idx_stimuli_run ON stimuli(run_id)`,
	`CREATE INDEX IF NOT EXISTS idx_stimuli_group ON stimuli(stimulus, set_size, target_condition)`,
}

// Index is a SQLite table of ledger rows across runs.
type Index struct {
	db *sql.DB
}

// OpenIndex opens or creates the index at path.
func OpenIndex(path string) (*Index, error) {
	if path == "" {
		return nil, fmt.Errorf("index path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping index: %w", err)
	}
	// One writer; the batch inserts a whole group per transaction.
	db.SetMaxOpenConns(1)

	stmts := append([]string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"}, schema...)
	for _, q := range stmts {
		if _, err := db.Exec(q); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize index: %w", err)
		}
	}
	return &Index{db: db}, nil
}

// Insert adds recs under runID in a single transaction.
func (x *Index) Insert(ctx context.Context, runID string, recs []Record) error {
	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO stimuli (
			run_id, stimulus, set_size, target_condition, img_num,
			root_output_dir, img_file, meta_file
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range recs {
		if _, err := stmt.ExecContext(ctx, runID, r.Stimulus, r.SetSize, r.TargetCondition,
			r.ImgNum, r.RootOutputDir, r.ImgFile, r.MetaFile); err != nil {
			return fmt.Errorf("failed to insert record: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit records: %w", err)
	}
	return nil
}

// Records returns the rows written by runID in insertion order.
func (x *Index) Records(ctx context.Context, runID string) ([]Record, error) {
	rows, err := x.db.QueryContext(ctx, `
		SELECT stimulus, set_size, target_condition, img_num, root_output_dir, img_file, meta_file
		FROM stimuli WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.Stimulus, &r.SetSize, &r.TargetCondition, &r.ImgNum,
			&r.RootOutputDir, &r.ImgFile, &r.MetaFile); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// Runs returns the number of rows per run id.
func (x *Index) Runs(ctx context.Context) (map[string]int, error) {
	rows, err := x.db.QueryContext(ctx, `SELECT run_id, COUNT(*) FROM stimuli GROUP BY run_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs[id] = n
	}
	return runs, rows.Err()
}

// Close closes the database.
func (x *Index) Close() error {
	return x.db.Close()
}
