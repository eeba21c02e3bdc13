package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite"

	"github.com/chrisptang/jate/pkg/jate/internalerr"
	"github.com/chrisptang/jate/pkg/jate/rank"
	"github.com/chrisptang/jate/pkg/jate/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled and creates the
// schema if needed.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	// Connection pragmas go in the DSN so every pooled connection gets them;
	// run_terms rows are removed with their run.
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	algorithm TEXT NOT NULL,
	params TEXT,
	filter TEXT,
	created_at TEXT NOT NULL,
	candidates INTEGER NOT NULL DEFAULT 0,
	metrics TEXT
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC, id DESC);

CREATE TABLE IF NOT EXISTS run_terms (
	run_id TEXT NOT NULL,
	rank INTEGER NOT NULL,
	term TEXT NOT NULL,
	score REAL,
	PRIMARY KEY(run_id, rank),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveRun stores a run and its ranked terms in one transaction.
func (s *sqliteStore) SaveRun(ctx context.Context, r store.Run) error {
	if r.ID == "" {
		return fmt.Errorf("%w: run id is required", internalerr.ErrInvalidInput)
	}

	params, err := json.Marshal(r.Params)
	if err != nil {
		return fmt.Errorf("encode params: %w", err)
	}
	filterJSON, err := json.Marshal(r.Filter)
	if err != nil {
		return fmt.Errorf("encode filter: %w", err)
	}
	metrics, err := json.Marshal(r.Metrics)
	if err != nil {
		return fmt.Errorf("encode metrics: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id = ?`, r.ID).Scan(&exists)
	switch {
	case err == nil:
		return fmt.Errorf("%w: run %s", internalerr.ErrDuplicate, r.ID)
	case !errors.Is(err, sql.ErrNoRows):
		return err
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO runs (id, algorithm, params, filter, created_at, candidates, metrics)
VALUES (?, ?, ?, ?, ?, ?, ?);
`,
		r.ID,
		r.Algorithm,
		string(params),
		string(filterJSON),
		r.CreatedAt.UTC().Format(time.RFC3339Nano),
		r.Candidates,
		string(metrics),
	)
	if err != nil {
		return err
	}

	if len(r.Terms) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO run_terms (run_id, rank, term, score) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, st := range r.Terms {
			score := sql.NullFloat64{Float64: st.Score, Valid: !math.IsNaN(st.Score)}
			if _, err := stmt.ExecContext(ctx, r.ID, st.Rank, st.Term, score); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// GetRun loads a run with its ranked terms in rank order.
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, error) {
	var (
		r                       store.Run
		params, filter, metrics sql.NullString
		created                 string
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, algorithm, params, filter, created_at, candidates, metrics
FROM runs
WHERE id = ?;
`, id).Scan(&r.ID, &r.Algorithm, &params, &filter, &created, &r.Candidates, &metrics)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Run{}, fmt.Errorf("%w: run %s", internalerr.ErrNotFound, id)
	}
	if err != nil {
		return store.Run{}, err
	}

	r.CreatedAt = parseTime(created)
	if err := decodeJSON(params, &r.Params); err != nil {
		return store.Run{}, fmt.Errorf("decode params: %w", err)
	}
	if err := decodeJSON(filter, &r.Filter); err != nil {
		return store.Run{}, fmt.Errorf("decode filter: %w", err)
	}
	if err := decodeJSON(metrics, &r.Metrics); err != nil {
		return store.Run{}, fmt.Errorf("decode metrics: %w", err)
	}

	r.Terms, err = s.loadTerms(ctx, id)
	if err != nil {
		return store.Run{}, err
	}
	return r, nil
}

// ListRuns returns run summaries, newest first.
func (s *sqliteStore) ListRuns(ctx context.Context, limit int) ([]store.RunSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT r.id, r.algorithm, r.created_at, r.candidates, r.metrics,
	(SELECT COUNT(*) FROM run_terms t WHERE t.run_id = r.id)
FROM runs r
ORDER BY r.created_at DESC, r.id DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.RunSummary
	for rows.Next() {
		var (
			sum     store.RunSummary
			created string
			metrics sql.NullString
		)
		if err := rows.Scan(&sum.ID, &sum.Algorithm, &created, &sum.Candidates, &metrics, &sum.Terms); err != nil {
			return nil, err
		}
		sum.CreatedAt = parseTime(created)
		if err := decodeJSON(metrics, &sum.Metrics); err != nil {
			return nil, fmt.Errorf("decode metrics: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// DeleteRun removes a run and its terms.
func (s *sqliteStore) DeleteRun(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM run_terms WHERE run_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: run %s", internalerr.ErrNotFound, id)
	}
	return tx.Commit()
}

func (s *sqliteStore) loadTerms(ctx context.Context, id string) (rank.List, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT rank, term, score FROM run_terms WHERE run_id = ? ORDER BY rank`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out rank.List
	for rows.Next() {
		var (
			st    rank.ScoredTerm
			score sql.NullFloat64
		)
		if err := rows.Scan(&st.Rank, &st.Term, &score); err != nil {
			return nil, err
		}
		st.Score = math.NaN()
		if score.Valid {
			st.Score = score.Float64
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func decodeJSON(s sql.NullString, v any) error {
	if !s.Valid || s.String == "" || s.String == "null" {
		return nil
	}
	return json.Unmarshal([]byte(s.String), v)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
