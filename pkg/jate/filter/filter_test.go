package filter

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/chrisptang/jate/pkg/jate/internalerr"
	"github.com/chrisptang/jate/pkg/jate/rank"
	"github.com/chrisptang/jate/pkg/jate/stats"
)

func rankedList(n int) rank.List {
	l := make(rank.List, n)
	for i := range l {
		l[i] = rank.ScoredTerm{Term: fmt.Sprintf("t%d", i), Score: float64(n - i), Rank: i + 1}
	}
	return l
}

func TestCutoff(t *testing.T) {
	if got := len(Cutoff(rankedList(100), 1.0)); got != 100 {
		t.Errorf("f=1.0 should keep all, got %d", got)
	}
	if got := len(Cutoff(rankedList(100), 0.5)); got != 50 {
		t.Errorf("f=0.5 should keep 50, got %d", got)
	}
	if got := len(Cutoff(rankedList(10), 0.25)); got != 2 {
		t.Errorf("expected floor(2.5)=2, got %d", got)
	}
	for _, tc := range []struct {
		f    float64
		want int
	}{
		{0.29, 29},
		{0.57, 57},
		{0.58, 58},
		{0.99999, 99},
	} {
		if got := len(Cutoff(rankedList(100), tc.f)); got != tc.want {
			t.Errorf("f=%v of 100: got %d, want %d", tc.f, got, tc.want)
		}
	}
	if got := len(Cutoff(rankedList(3), 0.01)); got != 1 {
		t.Errorf("cutoff must never drop everything, got %d", got)
	}
	if got := len(Cutoff(nil, 0.5)); got != 0 {
		t.Errorf("empty input stays empty, got %d", got)
	}
}

func TestPrefilter(t *testing.T) {
	idx, err := stats.FromRecords(10, []stats.Record{
		{Term: "rare", TotalFrequency: 1, DocumentFrequency: 1},
		{Term: "common", TotalFrequency: 5, DocumentFrequency: 3},
		{Term: "edge", TotalFrequency: 2, DocumentFrequency: 2},
	})
	if err != nil {
		t.Fatalf("index: %v", err)
	}

	kept := Prefilter(idx, 2)
	if len(kept) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(kept))
	}
	for _, id := range kept {
		if idx.Term(id) == "rare" {
			t.Error("rare should have been filtered")
		}
	}
	if idx.Term(kept[0]) != "common" {
		t.Error("prefilter should keep insertion order")
	}
	if len(Prefilter(idx, 0)) != 3 {
		t.Error("threshold 0 disables the prefilter")
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{}).Validate(); err != nil {
		t.Errorf("zero config should be valid: %v", err)
	}
	if (Config{}).Fraction() != 1 {
		t.Error("zero cutoff should mean keep everything")
	}
	for _, c := range []Config{
		{MinTotalFrequency: -1},
		{TopKPercent: 1.5},
		{TopKPercent: -0.1},
		{TopKPercent: math.NaN()},
	} {
		if err := c.Validate(); !errors.Is(err, internalerr.ErrInvalidConfig) {
			t.Errorf("%+v: expected ErrInvalidConfig, got %v", c, err)
		}
	}
}
