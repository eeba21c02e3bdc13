package rank

import (
	"fmt"
	"math"
	"sort"

	"github.com/chrisptang/jate/pkg/jate/internalerr"
	"github.com/chrisptang/jate/pkg/jate/stats"
	"github.com/chrisptang/jate/pkg/jate/term"
)

// ScoredTerm is a candidate with its score and 1-based rank.
type ScoredTerm struct {
	Term  string  `json:"term"`
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}

// List is a ranked term list produced by one algorithm run.
type List []ScoredTerm

// Rank orders candidates by descending score. Equal scores keep the order of
// ids, which callers pass in index insertion order. NaN scores rank last.
func Rank(idx *stats.Index, ids []stats.TermID, scores []float64) List {
	order := make([]int, len(ids))
	for i := range order {
		order[i] = i
	}
	key := func(i int) float64 {
		s := scores[i]
		if math.IsNaN(s) {
			return math.Inf(-1)
		}
		return s
	}
	sort.SliceStable(order, func(a, b int) bool {
		return key(order[a]) > key(order[b])
	})

	out := make(List, len(order))
	for r, i := range order {
		out[r] = ScoredTerm{
			Term:  idx.Term(ids[i]),
			Score: scores[i],
			Rank:  r + 1,
		}
	}
	return out
}

// Terms returns the term strings in rank order.
func (l List) Terms() []string {
	out := make([]string, len(l))
	for i, st := range l {
		out[i] = st.Term
	}
	return out
}

// Validate checks that ranks are contiguous from 1, scores never increase
// with rank and every term has a distinct normalized form.
func (l List) Validate() error {
	seen := make(map[string]struct{}, len(l))
	for i, st := range l {
		if st.Rank != i+1 {
			return fmt.Errorf("%w: entry %d has rank %d", internalerr.ErrInvalidInput, i, st.Rank)
		}
		if i > 0 && l[i-1].Score < st.Score {
			return fmt.Errorf("%w: score increases at rank %d", internalerr.ErrInvalidInput, st.Rank)
		}
		key := term.Normalize(st.Term)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicate term %q", internalerr.ErrInvalidInput, st.Term)
		}
		seen[key] = struct{}{}
	}
	return nil
}
