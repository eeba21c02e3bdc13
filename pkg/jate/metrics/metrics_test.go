package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRun("tfidf", 20*time.Millisecond, 120, 100, nil)
	m.ObserveRun("tfidf", time.Millisecond, 0, 0, errors.New("boom"))

	if got := testutil.ToFloat64(m.RunsTotal.WithLabelValues("tfidf", StatusOK)); got != 1 {
		t.Errorf("ok runs: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.RunsTotal.WithLabelValues("tfidf", StatusError)); got != 1 {
		t.Errorf("error runs: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.CandidatesScored.WithLabelValues("tfidf")); got != 120 {
		t.Errorf("candidates scored: got %v, want 120", got)
	}
	if got := testutil.ToFloat64(m.TermsRanked.WithLabelValues("tfidf")); got != 100 {
		t.Errorf("terms ranked: got %v, want 100", got)
	}
	if n := testutil.CollectAndCount(m.RunDuration); n != 1 {
		t.Errorf("expected 1 duration series, got %d", n)
	}
}

func TestObserveEvaluation(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveEvaluation("cvalue", map[string]float64{"precision@50": 0.88, "recall": 0.4})

	if got := testutil.ToFloat64(m.Evaluation.WithLabelValues("cvalue", "precision@50")); got != 0.88 {
		t.Errorf("precision@50: got %v, want 0.88", got)
	}
	if got := testutil.ToFloat64(m.Evaluation.WithLabelValues("cvalue", "recall")); got != 0.4 {
		t.Errorf("recall: got %v, want 0.4", got)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveRun("ttf", time.Second, 1, 1, nil)
	m.ObserveEvaluation("ttf", map[string]float64{"recall": 1})
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveRun("rake", time.Millisecond, 3, 3, nil)

	path := filepath.Join(t.TempDir(), "jate.prom")
	if err := WriteTextfile(path, reg); err != nil {
		t.Fatalf("write textfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `jate_runs_total{algorithm="rake",status="ok"} 1`) {
		t.Errorf("textfile missing run counter:\n%s", data)
	}
}
