package algorithm

import (
	"math"

	"github.com/chrisptang/jate/pkg/jate/stats"
)

// CValue favours multi-word terms that occur independently rather than only
// as part of longer candidates.
//
//	single word:          f(a)
//	multi-word, unnested: log2|a| * f(a)
//	multi-word, nested:   log2|a| * (f(a) - sum f(b) / |T_a|)
//
// where T_a is the set of longer candidates containing a.
type CValue struct{}

func (*CValue) Name() string { return NameCValue }

func (a *CValue) Prepare(in Input) (ScoreFunc, error) {
	if err := requireIndex(a.Name(), in); err != nil {
		return nil, err
	}
	idx := in.Index
	return func(id stats.TermID) float64 {
		f := float64(idx.TotalFrequency(id))
		n := idx.WordCount(id)
		if n <= 1 {
			return f
		}
		weight := math.Log2(float64(n))
		parents := idx.ContainedIn(id)
		if len(parents) == 0 {
			return weight * f
		}
		var sum float64
		for _, p := range parents {
			sum += float64(idx.TotalFrequency(p))
		}
		return weight * (f - sum/float64(len(parents)))
	}, nil
}
