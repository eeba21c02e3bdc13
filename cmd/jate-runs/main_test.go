package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/chrisptang/jate/pkg/jate/internalerr"
	"github.com/chrisptang/jate/pkg/jate/rank"
	"github.com/chrisptang/jate/pkg/jate/store"
	"github.com/chrisptang/jate/pkg/jate/store/memstore"
)

func seededStore(t *testing.T) store.Store {
	t.Helper()
	st := memstore.New()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	runs := []store.Run{
		{
			ID: "01A", Algorithm: "tfidf", CreatedAt: base, Candidates: 3,
			Terms:   rank.List{{Term: "T cell", Score: 2.5, Rank: 1}, {Term: "IL-2", Score: 1, Rank: 2}, {Term: "cell", Score: 0.5, Rank: 3}},
			Metrics: map[string]float64{"precision@5": 0.4, "recall": 0.5},
		},
		{
			ID: "01B", Algorithm: "chisquare", CreatedAt: base.Add(time.Minute), Candidates: 3,
			Params: map[string]any{"frequent_term_cutoff": 0.3},
			Terms:  rank.List{{Term: "IL-2", Score: 4, Rank: 1}},
		},
	}
	for _, r := range runs {
		if err := st.SaveRun(context.Background(), r); err != nil {
			t.Fatal(err)
		}
	}
	return st
}

func TestListRuns(t *testing.T) {
	var out bytes.Buffer
	if err := execute(context.Background(), seededStore(t), []string{"list"}, 0, 0, &out); err != nil {
		t.Fatalf("list: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected header and 2 rows, got:\n%s", out.String())
	}
	if !strings.HasPrefix(lines[1], "01B") {
		t.Errorf("Expected newest run first, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "precision@5=0.4 recall=0.5") {
		t.Errorf("Expected sorted metrics, got %q", lines[2])
	}
}

func TestShowRun(t *testing.T) {
	var out bytes.Buffer
	if err := execute(context.Background(), seededStore(t), []string{"show", "01A"}, 0, 2, &out); err != nil {
		t.Fatalf("show: %v", err)
	}
	s := out.String()
	for _, want := range []string{"Algorithm:  tfidf", "Top 2 of 3 terms", "T cell", "recall=0.5"} {
		if !strings.Contains(s, want) {
			t.Errorf("Expected %q in output:\n%s", want, s)
		}
	}
	if strings.Contains(s, "0.5000") {
		t.Errorf("Expected third term to be cut:\n%s", s)
	}
}

func TestDeleteRun(t *testing.T) {
	ctx := context.Background()
	st := seededStore(t)
	var out bytes.Buffer
	if err := execute(ctx, st, []string{"delete", "01A"}, 0, 0, &out); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := st.GetRun(ctx, "01A"); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("Expected run to be gone, got %v", err)
	}
}

func TestExecuteErrors(t *testing.T) {
	ctx := context.Background()
	st := seededStore(t)
	var out bytes.Buffer

	if err := execute(ctx, st, []string{"show"}, 0, 0, &out); err == nil {
		t.Error("show without id should fail")
	}
	if err := execute(ctx, st, []string{"show", "missing"}, 0, 0, &out); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if err := execute(ctx, st, []string{"rerun"}, 0, 0, &out); err == nil {
		t.Error("unknown command should fail")
	}
}
