// Package jate ranks the candidate terms of a corpus with interchangeable
// scoring algorithms and benchmarks the rankings against a gold standard.
package jate

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"maps"
	"runtime"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/chrisptang/jate/internal/logger"
	"github.com/chrisptang/jate/pkg/jate/algorithm"
	"github.com/chrisptang/jate/pkg/jate/eval"
	"github.com/chrisptang/jate/pkg/jate/filter"
	"github.com/chrisptang/jate/pkg/jate/internalerr"
	"github.com/chrisptang/jate/pkg/jate/metrics"
	"github.com/chrisptang/jate/pkg/jate/rank"
	"github.com/chrisptang/jate/pkg/jate/reference"
	"github.com/chrisptang/jate/pkg/jate/stats"
	"github.com/chrisptang/jate/pkg/jate/store"
)

const defaultChunkSize = 2048

// Extractor is the extraction facade over one corpus.
type Extractor struct {
	index     *stats.Index
	ref       reference.Provider
	store     store.Store
	metrics   *metrics.Metrics
	log       *slog.Logger
	workers   int
	chunkSize int

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// Options configures an Extractor. Only Index is required.
type Options struct {
	Index     *stats.Index
	Reference reference.Provider
	// Store persists benchmark runs when set.
	Store   store.Store
	Metrics *metrics.Metrics
	Logger  *slog.Logger
	// Workers bounds concurrent scoring and concurrent jobs. 0 uses
	// GOMAXPROCS.
	Workers int
	// ChunkSize is the number of candidates scored per task.
	ChunkSize int
}

// New creates an Extractor with the given dependencies.
func New(opts Options) (*Extractor, error) {
	if opts.Index == nil {
		return nil, fmt.Errorf("%w: a statistics index is required", internalerr.ErrInvalidConfig)
	}
	if opts.Workers < 0 || opts.ChunkSize < 0 {
		return nil, fmt.Errorf("%w: workers and chunk size must not be negative", internalerr.ErrInvalidConfig)
	}
	e := &Extractor{
		index:     opts.Index,
		ref:       opts.Reference,
		store:     opts.Store,
		metrics:   opts.Metrics,
		log:       opts.Logger,
		workers:   opts.Workers,
		chunkSize: opts.ChunkSize,
		entropy:   ulid.Monotonic(rand.Reader, 0),
		now:       time.Now,
	}
	if e.log == nil {
		e.log = logger.WithComponent("extractor")
	}
	if e.workers == 0 {
		e.workers = runtime.GOMAXPROCS(0)
	}
	if e.chunkSize == 0 {
		e.chunkSize = defaultChunkSize
	}
	return e, nil
}

// Index returns the statistics index the extractor scores against.
func (e *Extractor) Index() *stats.Index { return e.index }

// Extract runs one algorithm: candidates below the minimum frequency are
// dropped, the rest are scored in parallel, ranked, and cut to the
// configured top fraction. A cancelled context yields ctx.Err() and no
// partial list.
func (e *Extractor) Extract(ctx context.Context, alg algorithm.Algorithm, f filter.Config) (rank.List, error) {
	list, _, err := e.extract(ctx, alg, f)
	return list, err
}

func (e *Extractor) extract(ctx context.Context, alg algorithm.Algorithm, f filter.Config) (list rank.List, scored int, err error) {
	if alg == nil {
		return nil, 0, fmt.Errorf("%w: algorithm is required", internalerr.ErrInvalidConfig)
	}
	log := logger.FromContext(ctx, e.log).With("algorithm", alg.Name())
	start := time.Now()
	defer func() {
		e.metrics.ObserveRun(alg.Name(), time.Since(start), scored, len(list), err)
		if err != nil {
			log.Warn("extraction failed", "error", err)
			return
		}
		log.Info("extraction finished", "candidates", scored, "ranked", len(list), "took", time.Since(start))
	}()

	if err := f.Validate(); err != nil {
		return nil, 0, err
	}
	candidates := filter.Prefilter(e.index, f.MinTotalFrequency)
	log.Debug("candidates filtered", "total", e.index.Len(), "kept", len(candidates))

	score, err := alg.Prepare(algorithm.Input{
		Index:      e.index,
		Reference:  e.ref,
		Candidates: candidates,
	})
	if err != nil {
		return nil, 0, err
	}

	scores, err := e.scoreAll(ctx, score, candidates)
	if err != nil {
		return nil, 0, err
	}

	ranked := rank.Rank(e.index, candidates, scores)
	return filter.Cutoff(ranked, f.Fraction()), len(candidates), nil
}

// scoreAll evaluates score over candidates in fixed chunks. Each chunk
// writes a disjoint range of the result slice.
func (e *Extractor) scoreAll(ctx context.Context, score algorithm.ScoreFunc, candidates []stats.TermID) ([]float64, error) {
	scores := make([]float64, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for lo := 0; lo < len(candidates); lo += e.chunkSize {
		lo, hi := lo, min(lo+e.chunkSize, len(candidates))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				scores[i] = score(candidates[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// a context cancelled after the last chunk started still aborts the run
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return scores, nil
}

// Job names an algorithm, its options and the filter policy of one run.
type Job struct {
	Algorithm string         `json:"algorithm"`
	Params    map[string]any `json:"params,omitempty"`
	Filter    filter.Config  `json:"filter"`
}

// Result is the outcome of one Job. Err is set when the job failed; a
// failed job never affects the others.
type Result struct {
	Job        Job
	Terms      rank.List
	Candidates int
	Took       time.Duration
	Err        error
}

// ExtractAll runs jobs concurrently and returns their results in job order.
func (e *Extractor) ExtractAll(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			start := time.Now()
			res := Result{Job: job}
			alg, err := algorithm.New(job.Algorithm, job.Params)
			if err == nil {
				res.Terms, res.Candidates, err = e.extract(ctx, alg, job.Filter)
			}
			res.Err = err
			res.Took = time.Since(start)
			results[i] = res
			return nil
		})
	}
	g.Wait()
	return results
}

// RunReport is the benchmark outcome of one Job.
type RunReport struct {
	RunID      string        `json:"run_id"`
	Job        Job           `json:"job"`
	Candidates int           `json:"candidates"`
	Ranked     int           `json:"ranked"`
	Took       time.Duration `json:"took_ns"`
	Evaluation *eval.Report  `json:"evaluation,omitempty"`
	Error      string        `json:"error,omitempty"`

	terms rank.List
	err   error
}

// Terms returns the ranked list the report was computed from.
func (r RunReport) Terms() rank.List { return r.terms }

// Err returns the error the run failed with, if any.
func (r RunReport) Err() error { return r.err }

// Benchmark runs jobs, evaluates each ranked list against gold and, when the
// extractor has a store, persists every successful run. Per-job failures
// are reported in the returned slice; the error is reserved for failures
// that affect the whole benchmark.
func (e *Extractor) Benchmark(ctx context.Context, jobs []Job, gold *eval.GoldStandard, cfg eval.Config) ([]RunReport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	results := e.ExtractAll(ctx, jobs)
	reports := make([]RunReport, len(results))
	for i, res := range results {
		rep := RunReport{
			RunID:      e.newRunID(),
			Job:        res.Job,
			Candidates: res.Candidates,
			Ranked:     len(res.Terms),
			Took:       res.Took,
			terms:      res.Terms,
			err:        res.Err,
		}
		log := logger.FromContext(logger.WithRunID(ctx, rep.RunID), e.log).With("algorithm", res.Job.Algorithm)

		if res.Err != nil {
			rep.Error = res.Err.Error()
			reports[i] = rep
			continue
		}

		if gold != nil {
			report, err := eval.Evaluate(res.Terms, gold, cfg)
			if err != nil {
				return nil, err
			}
			rep.Evaluation = &report
			e.metrics.ObserveEvaluation(res.Job.Algorithm, report.Metrics)
			log.Info("evaluation finished", "recall", report.Metrics[eval.RecallKey])
		}

		if e.store != nil {
			if err := e.store.SaveRun(ctx, e.toRun(rep)); err != nil {
				return nil, fmt.Errorf("save run %s: %w", rep.RunID, err)
			}
			log.Debug("run saved")
		}
		reports[i] = rep
	}
	return reports, nil
}

func (e *Extractor) toRun(rep RunReport) store.Run {
	r := store.Run{
		ID:         rep.RunID,
		Algorithm:  rep.Job.Algorithm,
		Params:     maps.Clone(rep.Job.Params),
		Filter:     rep.Job.Filter,
		CreatedAt:  e.now(),
		Candidates: rep.Candidates,
		Terms:      rep.terms,
	}
	if rep.Evaluation != nil {
		r.Metrics = rep.Evaluation.Metrics
	}
	return r
}

func (e *Extractor) newRunID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ulid.MustNew(ulid.Now(), e.entropy).String()
}
