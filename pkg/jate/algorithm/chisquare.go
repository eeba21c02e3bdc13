package algorithm

import (
	"fmt"
	"math"
	"sort"

	"github.com/chrisptang/jate/pkg/jate/internalerr"
	"github.com/chrisptang/jate/pkg/jate/stats"
)

// DefaultFrequentTermCutoff is the share of candidates, by frequency, that
// form the frequent-term set.
const DefaultFrequentTermCutoff = 0.3

// ChiSquare measures how biased a term's sentence co-occurrence with the
// frequent terms is compared with an independence model:
//
//	chi2(w) = sum_g (freq(w,g) - n_w p_g)^2 / (n_w p_g) - max_g (...)
//
// where n_w is the number of candidate slots in sentences containing w and
// p_g is the share of all slots falling in sentences containing g.
// Subtracting the largest term keeps a single strong co-occurrence from
// dominating.
type ChiSquare struct {
	// FrequentTermCutoff is the fraction (0,1] of candidates, taken by
	// descending frequency, used as co-occurrence targets.
	FrequentTermCutoff float64 `mapstructure:"frequent_term_cutoff"`
}

// NewChiSquare returns ChiSquare with the default cutoff.
func NewChiSquare() *ChiSquare {
	return &ChiSquare{FrequentTermCutoff: DefaultFrequentTermCutoff}
}

func (*ChiSquare) Name() string { return NameChiSquare }

func (a *ChiSquare) validate() error {
	if a.FrequentTermCutoff <= 0 || a.FrequentTermCutoff > 1 {
		return fmt.Errorf("%w: chisquare frequent_term_cutoff %v outside (0,1]",
			internalerr.ErrInvalidConfig, a.FrequentTermCutoff)
	}
	return nil
}

func (a *ChiSquare) Prepare(in Input) (ScoreFunc, error) {
	if err := requireIndex(a.Name(), in); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	idx := in.Index
	if !idx.HasContexts() {
		return nil, fmt.Errorf("%w: chisquare needs sentence-level co-occurrence", internalerr.ErrInvalidInput)
	}

	frequent := mostFrequent(idx, in.Candidates, a.FrequentTermCutoff)
	total := float64(idx.ContextTerms())
	probs := make([]float64, len(frequent))
	for i, g := range frequent {
		probs[i] = float64(idx.ContextWeight(g)) / total
	}

	return func(id stats.TermID) float64 {
		nw := float64(idx.ContextWeight(id))
		var sum, peak float64
		for i, g := range frequent {
			if g == id {
				continue
			}
			expected := nw * probs[i]
			if expected == 0 {
				continue
			}
			d := float64(idx.Cooccurrence(id, g)) - expected
			v := d * d / expected
			sum += v
			if v > peak {
				peak = v
			}
		}
		return sum - peak
	}, nil
}

// mostFrequent returns the leading ceil(len*fraction) candidates by total
// frequency; ties keep insertion order.
func mostFrequent(idx *stats.Index, candidates []stats.TermID, fraction float64) []stats.TermID {
	if len(candidates) == 0 {
		return nil
	}
	sorted := append([]stats.TermID(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return idx.TotalFrequency(sorted[i]) > idx.TotalFrequency(sorted[j])
	})
	k := int(math.Ceil(float64(len(sorted)) * fraction))
	if k < 1 {
		k = 1
	}
	if k > len(sorted) {
		k = len(sorted)
	}
	return sorted[:k]
}
