package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/chrisptang/jate/internal/logger"
	"github.com/chrisptang/jate/pkg/jate"
	"github.com/chrisptang/jate/pkg/jate/config"
	"github.com/chrisptang/jate/pkg/jate/eval"
	"github.com/chrisptang/jate/pkg/jate/metrics"
	"github.com/chrisptang/jate/pkg/jate/reference"
	"github.com/chrisptang/jate/pkg/jate/stats"
	"github.com/chrisptang/jate/pkg/jate/store"
	"github.com/chrisptang/jate/pkg/jate/store/sqlite"
)

func main() {
	var (
		configPath = flag.String("config", "", "Benchmark YAML file (required)")
		storePath  = flag.String("store", "", "SQLite run store, overrides the config file")
		metricsOut = flag.String("metrics-out", "", "Write Prometheus metrics to this textfile")
		logLevel   = flag.String("log-level", "info", "Log level: debug, info, warn, error")
		logFormat  = flag.String("log-format", "text", "Log format: text or json")
	)
	flag.Parse()

	logger.Setup(*logLevel, *logFormat)
	log := logger.WithComponent("jate-bench")

	if *configPath == "" {
		log.Error("--config required")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, *storePath, *metricsOut, os.Stdout); err != nil {
		log.Error("benchmark failed", "error", err)
		os.Exit(1)
	}
}

// benchmarkOutput is the JSON document printed on stdout.
type benchmarkOutput struct {
	Documents  int64            `json:"documents"`
	Candidates int              `json:"candidates"`
	Runs       []jate.RunReport `json:"runs"`
}

func run(ctx context.Context, configPath, storePath, metricsOut string, out io.Writer) error {
	bench, err := config.LoadBenchmark(configPath)
	if err != nil {
		return err
	}
	if storePath != "" {
		bench.Store = storePath
	}

	reg := prometheus.NewRegistry()
	ex, gold, cleanup, err := buildExtractor(ctx, bench, metrics.New(reg))
	if err != nil {
		return err
	}
	defer cleanup()

	log := logger.WithComponent("jate-bench")
	log.Info("benchmark started",
		"documents", ex.Index().Documents(),
		"candidates", ex.Index().Len(),
		"algorithms", len(bench.Algorithms))

	reports, err := ex.Benchmark(ctx, benchmarkJobs(bench), gold, bench.EvalConfig())
	if err != nil {
		return err
	}
	for _, r := range reports {
		if r.Err() != nil {
			log.Warn("algorithm failed", "algorithm", r.Job.Algorithm, "error", r.Err())
		}
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(benchmarkOutput{
		Documents:  ex.Index().Documents(),
		Candidates: ex.Index().Len(),
		Runs:       reports,
	}); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if metricsOut != "" {
		if err := metrics.WriteTextfile(metricsOut, reg); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

func benchmarkJobs(b *config.Benchmark) []jate.Job {
	jobs := make([]jate.Job, len(b.Algorithms))
	for i, spec := range b.Algorithms {
		jobs[i] = jate.Job{
			Algorithm: spec.Name,
			Params:    spec.Params,
			Filter:    b.Filter,
		}
	}
	return jobs
}

// buildExtractor loads every input a benchmark names. The returned cleanup
// closes the run store, if any.
func buildExtractor(ctx context.Context, b *config.Benchmark, m *metrics.Metrics) (*jate.Extractor, *eval.GoldStandard, func(), error) {
	cleanup := func() {}

	idx, err := loadIndex(ctx, b)
	if err != nil {
		return nil, nil, cleanup, err
	}

	var ref reference.Provider
	if b.Reference != "" {
		table, err := config.LoadReference(b.Reference)
		if err != nil {
			return nil, nil, cleanup, fmt.Errorf("load reference: %w", err)
		}
		ref = table
	}

	gold, err := config.LoadGoldStandard(b.GoldStandard)
	if err != nil {
		return nil, nil, cleanup, fmt.Errorf("load gold standard: %w", err)
	}

	var st store.Store
	if b.Store != "" {
		st, err = sqlite.OpenSQLite(ctx, b.Store)
		if err != nil {
			return nil, nil, cleanup, fmt.Errorf("open store: %w", err)
		}
		cleanup = func() {
			if err := st.Close(); err != nil {
				slog.Warn("close store", "error", err)
			}
		}
	}

	ex, err := jate.New(jate.Options{
		Index:     idx,
		Reference: ref,
		Store:     st,
		Metrics:   m,
		Logger:    logger.WithComponent("extractor"),
		Workers:   b.Concurrency,
	})
	if err != nil {
		cleanup()
		return nil, nil, func() {}, err
	}
	return ex, gold, cleanup, nil
}

func loadIndex(ctx context.Context, b *config.Benchmark) (*stats.Index, error) {
	if b.Statistics != nil {
		recs, err := config.LoadRecords(b.Statistics.Path)
		if err != nil {
			return nil, fmt.Errorf("load statistics: %w", err)
		}
		return stats.FromRecords(b.Statistics.Documents, recs)
	}

	docs, err := config.LoadCorpus(b.Corpus)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	return stats.Build(ctx, docs, stats.WithWorkers(b.Concurrency))
}
