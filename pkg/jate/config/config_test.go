package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/chrisptang/jate/pkg/jate/internalerr"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadBenchmark(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bench.yaml", `corpus: genia.jsonl
reference: bnc.txt
gold_standard: gold.txt
filter:
  min_total_frequency: 2
  top_k_percent: 0.99999
algorithms:
  - name: tfidf
  - name: chisquare
    params:
      frequent_term_cutoff: 0.3
evaluation:
  normalization:
    lowercase: true
    ignore_symbols: true
  normalize_candidates: true
  normalize_gold: true
  ks: [50, 100]
  round_digits: 2
store: runs.db
concurrency: 4
`)

	b, err := LoadBenchmark(path)
	if err != nil {
		t.Fatalf("Failed to load benchmark: %v", err)
	}

	if b.Corpus != filepath.Join(dir, "genia.jsonl") {
		t.Errorf("corpus path not resolved: %s", b.Corpus)
	}
	if b.Store != filepath.Join(dir, "runs.db") {
		t.Errorf("store path not resolved: %s", b.Store)
	}
	if b.Filter.MinTotalFrequency != 2 || b.Filter.TopKPercent != 0.99999 {
		t.Errorf("unexpected filter: %+v", b.Filter)
	}
	if len(b.Algorithms) != 2 || b.Algorithms[1].Params["frequent_term_cutoff"] != 0.3 {
		t.Errorf("unexpected algorithms: %+v", b.Algorithms)
	}
	ec := b.EvalConfig()
	if len(ec.Ks) != 2 || ec.RoundDigits != 2 || !ec.Normalization.IgnoreSymbols {
		t.Errorf("unexpected evaluation config: %+v", ec)
	}
	if b.Concurrency != 4 {
		t.Errorf("expected concurrency 4, got %d", b.Concurrency)
	}
}

func TestLoadBenchmarkDefaultsEvaluation(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bench.yaml", `statistics:
  path: /data/stats.tsv
  documents: 2000
gold_standard: gold.txt
algorithms:
  - name: ttf
`)

	b, err := LoadBenchmark(path)
	if err != nil {
		t.Fatalf("Failed to load benchmark: %v", err)
	}
	if b.Statistics.Path != "/data/stats.tsv" {
		t.Errorf("absolute path rewritten: %s", b.Statistics.Path)
	}
	if ec := b.EvalConfig(); len(ec.Ks) != 8 || ec.RoundDigits != 2 {
		t.Errorf("expected default evaluation config, got %+v", ec)
	}
}

func TestBenchmarkValidate(t *testing.T) {
	valid := func() *Benchmark {
		return &Benchmark{
			Corpus:       "c.jsonl",
			GoldStandard: "gold.txt",
			Algorithms:   []AlgorithmSpec{{Name: "ttf"}},
		}
	}

	tests := []struct {
		name   string
		mutate func(b *Benchmark)
	}{
		{"no input", func(b *Benchmark) { b.Corpus = "" }},
		{"both inputs", func(b *Benchmark) { b.Statistics = &Statistics{Path: "s.tsv", Documents: 1} }},
		{"no documents", func(b *Benchmark) { b.Corpus = ""; b.Statistics = &Statistics{Path: "s.tsv"} }},
		{"no gold", func(b *Benchmark) { b.GoldStandard = "" }},
		{"no algorithms", func(b *Benchmark) { b.Algorithms = nil }},
		{"unknown algorithm", func(b *Benchmark) { b.Algorithms[0].Name = "bm25" }},
		{"bad option", func(b *Benchmark) {
			b.Algorithms[0] = AlgorithmSpec{Name: "chisquare", Params: map[string]any{"frequent_term_cutoff": 2}}
		}},
		{"bad filter", func(b *Benchmark) { b.Filter.TopKPercent = 1.5 }},
		{"negative concurrency", func(b *Benchmark) { b.Concurrency = -1 }},
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid benchmark rejected: %v", err)
	}
	for _, tc := range tests {
		b := valid()
		tc.mutate(b)
		if err := b.Validate(); !errors.Is(err, internalerr.ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", tc.name, err)
		}
	}
}

func TestLoadBenchmarkMissingFile(t *testing.T) {
	if _, err := LoadBenchmark(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
