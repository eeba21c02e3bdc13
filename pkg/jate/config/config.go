// Package config loads benchmark definitions and the external data files a
// benchmark run reads: corpus, pre-computed statistics, reference
// frequencies and the gold standard.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/chrisptang/jate/pkg/jate/algorithm"
	"github.com/chrisptang/jate/pkg/jate/eval"
	"github.com/chrisptang/jate/pkg/jate/filter"
	"github.com/chrisptang/jate/pkg/jate/internalerr"
)

// Benchmark describes one benchmark run over a corpus.
type Benchmark struct {
	// Corpus is a JSONL file of pre-segmented documents. Exactly one of
	// Corpus and Statistics is set.
	Corpus     string      `yaml:"corpus"`
	Statistics *Statistics `yaml:"statistics"`

	Reference    string          `yaml:"reference"`
	GoldStandard string          `yaml:"gold_standard"`
	Filter       filter.Config   `yaml:"filter"`
	Algorithms   []AlgorithmSpec `yaml:"algorithms"`
	Evaluation   *eval.Config    `yaml:"evaluation"`

	// Store is the sqlite file runs are persisted to; empty disables
	// persistence.
	Store       string `yaml:"store"`
	Concurrency int    `yaml:"concurrency"`
}

// Statistics points at a pre-computed statistics file.
type Statistics struct {
	Path      string `yaml:"path"`
	Documents int64  `yaml:"documents"`
}

// AlgorithmSpec selects an algorithm and its options.
type AlgorithmSpec struct {
	Name   string         `yaml:"name"`
	Params map[string]any `yaml:"params"`
}

// LoadBenchmark reads and validates a benchmark file. Relative data paths
// are resolved against the file's directory.
func LoadBenchmark(path string) (*Benchmark, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var b Benchmark
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", internalerr.ErrInvalidConfig, path, err)
	}

	dir := filepath.Dir(path)
	b.Corpus = resolve(dir, b.Corpus)
	b.Reference = resolve(dir, b.Reference)
	b.GoldStandard = resolve(dir, b.GoldStandard)
	b.Store = resolve(dir, b.Store)
	if b.Statistics != nil {
		b.Statistics.Path = resolve(dir, b.Statistics.Path)
	}

	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &b, nil
}

// Validate checks the benchmark for missing inputs and unusable options.
// Algorithm options are checked by constructing each algorithm.
func (b *Benchmark) Validate() error {
	switch {
	case b.Corpus == "" && b.Statistics == nil:
		return fmt.Errorf("%w: one of corpus or statistics is required", internalerr.ErrInvalidConfig)
	case b.Corpus != "" && b.Statistics != nil:
		return fmt.Errorf("%w: corpus and statistics are mutually exclusive", internalerr.ErrInvalidConfig)
	}
	if b.Statistics != nil {
		if b.Statistics.Path == "" {
			return fmt.Errorf("%w: statistics.path is required", internalerr.ErrInvalidConfig)
		}
		if b.Statistics.Documents <= 0 {
			return fmt.Errorf("%w: statistics.documents must be positive", internalerr.ErrInvalidConfig)
		}
	}
	if b.GoldStandard == "" {
		return fmt.Errorf("%w: gold_standard is required", internalerr.ErrInvalidConfig)
	}
	if len(b.Algorithms) == 0 {
		return fmt.Errorf("%w: at least one algorithm is required", internalerr.ErrInvalidConfig)
	}
	for _, spec := range b.Algorithms {
		if _, err := algorithm.New(spec.Name, spec.Params); err != nil {
			return err
		}
	}
	if err := b.Filter.Validate(); err != nil {
		return err
	}
	if b.Evaluation != nil {
		if err := b.Evaluation.Validate(); err != nil {
			return err
		}
	}
	if b.Concurrency < 0 {
		return fmt.Errorf("%w: concurrency must not be negative", internalerr.ErrInvalidConfig)
	}
	return nil
}

// EvalConfig returns the evaluation settings, falling back to
// eval.DefaultConfig when the file has none.
func (b *Benchmark) EvalConfig() eval.Config {
	if b.Evaluation == nil {
		return eval.DefaultConfig()
	}
	return *b.Evaluation
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
