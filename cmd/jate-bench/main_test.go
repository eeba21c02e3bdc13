package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chrisptang/jate/pkg/jate/config"
	"github.com/chrisptang/jate/pkg/jate/store/sqlite"
)

type decodedOutput struct {
	Documents  int64 `json:"documents"`
	Candidates int   `json:"candidates"`
	Runs       []struct {
		RunID      string                     `json:"run_id"`
		Job        struct{ Algorithm string } `json:"job"`
		Candidates int                        `json:"candidates"`
		Ranked     int                        `json:"ranked"`
		Error      string                     `json:"error"`
		Evaluation *struct {
			Metrics map[string]float64 `json:"metrics"`
		} `json:"evaluation"`
	} `json:"runs"`
}

// TestRunCorpusBenchmark runs every algorithm over the fixture corpus
func TestRunCorpusBenchmark(t *testing.T) {
	ctx := context.Background()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "runs.db")
	metricsPath := filepath.Join(tmpDir, "jate.prom")

	var out bytes.Buffer
	if err := run(ctx, "../../testdata/genia-mini/bench.yaml", dbPath, metricsPath, &out); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	var got decodedOutput
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out.String())
	}
	if got.Documents != 6 {
		t.Errorf("Expected 6 documents, got %d", got.Documents)
	}
	if len(got.Runs) != 10 {
		t.Fatalf("Expected 10 runs, got %d", len(got.Runs))
	}

	for _, r := range got.Runs {
		if r.Error != "" {
			t.Errorf("%s failed: %s", r.Job.Algorithm, r.Error)
			continue
		}
		// 9 candidates reach frequency 2; the 0.99999 cut-off keeps 8
		if r.Candidates != 9 || r.Ranked != 8 {
			t.Errorf("%s: candidates %d ranked %d, want 9 and 8", r.Job.Algorithm, r.Candidates, r.Ranked)
		}
		for metric, v := range r.Evaluation.Metrics {
			if v < 0 || v > 1 {
				t.Errorf("%s: %s = %v outside [0,1]", r.Job.Algorithm, metric, v)
			}
		}
	}

	ttf := got.Runs[0]
	if ttf.Job.Algorithm != "ttf" {
		t.Fatalf("Expected runs in config order, got %s first", ttf.Job.Algorithm)
	}
	m := ttf.Evaluation.Metrics
	if m["precision@5"] != 0.6 || m["precision@10"] != 0.5 || m["recall"] != 0.57 {
		t.Errorf("Unexpected ttf metrics: %v", m)
	}

	st, err := sqlite.OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer st.Close()
	runs, err := st.ListRuns(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 10 {
		t.Errorf("Expected 10 stored runs, got %d", len(runs))
	}

	prom, err := os.ReadFile(metricsPath)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	if !strings.Contains(string(prom), `jate_runs_total{algorithm="rake",status="ok"} 1`) {
		t.Errorf("metrics textfile missing rake run:\n%s", prom)
	}
}

// TestRunStatisticsBenchmark uses pre-computed statistics, which carry no
// sentence contexts
func TestRunStatisticsBenchmark(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), "../../testdata/genia-mini/bench-stats.yaml", "", "", &out); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	var got decodedOutput
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if got.Candidates != 10 {
		t.Errorf("Expected 10 candidates, got %d", got.Candidates)
	}
	for _, r := range got.Runs {
		if r.Job.Algorithm == "chisquare" {
			if r.Error == "" {
				t.Error("chisquare should fail without sentence contexts")
			}
			continue
		}
		if r.Error != "" || r.Ranked != 10 {
			t.Errorf("%s: error %q ranked %d", r.Job.Algorithm, r.Error, r.Ranked)
		}
	}
}

// TestBuildExtractorMissingGold tests that a missing gold standard is reported
func TestBuildExtractorMissingGold(t *testing.T) {
	b := &config.Benchmark{
		Corpus:       "../../testdata/genia-mini/corpus.jsonl",
		GoldStandard: filepath.Join(t.TempDir(), "nonexistent.txt"),
		Algorithms:   []config.AlgorithmSpec{{Name: "ttf"}},
	}
	_, _, cleanup, err := buildExtractor(context.Background(), b, nil)
	defer cleanup()
	if err == nil {
		t.Error("buildExtractor should fail with a missing gold standard")
	}
}

func TestBenchmarkJobs(t *testing.T) {
	b, err := config.LoadBenchmark("../../testdata/genia-mini/bench.yaml")
	if err != nil {
		t.Fatalf("load benchmark: %v", err)
	}
	jobs := benchmarkJobs(b)
	if len(jobs) != 10 {
		t.Fatalf("Expected 10 jobs, got %d", len(jobs))
	}
	for _, j := range jobs {
		if j.Filter.MinTotalFrequency != 2 {
			t.Errorf("%s: filter not propagated: %+v", j.Algorithm, j.Filter)
		}
	}
	if jobs[5].Params["frequent_term_cutoff"] != 0.3 {
		t.Errorf("chisquare params not propagated: %v", jobs[5].Params)
	}
}
