// Package store persists extraction runs so benchmark results can be
// compared across algorithms and parameter settings.
package store

import (
	"context"
	"time"

	"github.com/chrisptang/jate/pkg/jate/filter"
	"github.com/chrisptang/jate/pkg/jate/rank"
)

// Store is the interface for persisting and querying extraction runs.
type Store interface {
	Close() error

	// SaveRun stores a run. An existing ID is rejected with
	// internalerr.ErrDuplicate.
	SaveRun(ctx context.Context, r Run) error
	// GetRun returns a run with its ranked terms, or internalerr.ErrNotFound.
	GetRun(ctx context.Context, id string) (Run, error)
	// ListRuns returns the most recent runs first. limit <= 0 lists all.
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)
	DeleteRun(ctx context.Context, id string) error
}

// Run is one algorithm run over a corpus with its ranked output and, when a
// gold standard was available, its evaluation metrics.
type Run struct {
	ID         string
	Algorithm  string
	Params     map[string]any
	Filter     filter.Config
	CreatedAt  time.Time
	Candidates int
	Terms      rank.List
	Metrics    map[string]float64
}

// RunSummary is a run without its ranked terms.
type RunSummary struct {
	ID         string
	Algorithm  string
	CreatedAt  time.Time
	Candidates int
	Terms      int
	Metrics    map[string]float64
}

// Summary returns the run's summary.
func (r Run) Summary() RunSummary {
	return RunSummary{
		ID:         r.ID,
		Algorithm:  r.Algorithm,
		CreatedAt:  r.CreatedAt,
		Candidates: r.Candidates,
		Terms:      len(r.Terms),
		Metrics:    r.Metrics,
	}
}
