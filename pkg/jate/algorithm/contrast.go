package algorithm

import (
	"fmt"
	"math"

	"github.com/chrisptang/jate/pkg/jate/internalerr"
	"github.com/chrisptang/jate/pkg/jate/stats"
)

// contrast compares word probabilities in the domain corpus with those in
// the reference corpus. Words unseen in the reference get the fallback
// probability.
type contrast struct {
	idx         *stats.Index
	in          Input
	domainTotal float64
	refTotal    float64
	fallback    float64
}

func newContrast(name string, in Input, fallback float64) (*contrast, error) {
	if err := requireIndex(name, in); err != nil {
		return nil, err
	}
	if in.Reference == nil {
		return nil, fmt.Errorf("%w: %s requires a reference corpus", internalerr.ErrInvalidConfig, name)
	}
	refTotal := in.Reference.Total()
	if refTotal <= 0 {
		return nil, fmt.Errorf("%w: %s reference corpus is empty", internalerr.ErrInvalidConfig, name)
	}
	if fallback <= 0 {
		fallback = 1 / float64(refTotal+1)
	}
	return &contrast{
		idx:         in.Index,
		in:          in,
		domainTotal: float64(in.Index.TotalWords()),
		refTotal:    float64(refTotal),
		fallback:    fallback,
	}, nil
}

func (c *contrast) domain(word string) float64 {
	if c.domainTotal == 0 {
		return 0
	}
	return float64(c.idx.WordFrequency(word)) / c.domainTotal
}

func (c *contrast) reference(word string) float64 {
	f, ok := c.in.Reference.Frequency(word)
	if !ok || f <= 0 {
		return c.fallback
	}
	return float64(f) / c.refTotal
}

// cohesion is |a| * f(a) * ln f(a) / sum of the domain frequencies of a's
// words: how much of its words' usage the term accounts for.
func (c *contrast) cohesion(id stats.TermID) float64 {
	f := float64(c.idx.TotalFrequency(id))
	if f <= 1 {
		return 0
	}
	words := c.idx.Words(id)
	var sum float64
	for _, w := range words {
		sum += float64(c.idx.WordFrequency(w))
	}
	if sum == 0 {
		return 0
	}
	return float64(len(words)) * f * math.Log(f) / sum
}

func validateFallback(name string, fallback float64) error {
	if fallback < 0 || fallback > 1 || math.IsNaN(fallback) {
		return fmt.Errorf("%w: %s reference_fallback %v outside [0,1]", internalerr.ErrInvalidConfig, name, fallback)
	}
	return nil
}

func validateWeights(name string, weights ...float64) error {
	for _, w := range weights {
		if w < 0 || math.IsNaN(w) {
			return fmt.Errorf("%w: %s weights must be non-negative", internalerr.ErrInvalidConfig, name)
		}
	}
	return nil
}

// Weirdness is the ratio of a term's relative frequency in the domain corpus
// to its relative frequency in the reference corpus. Multi-word terms use
// the geometric mean of their words' ratios.
type Weirdness struct {
	// ReferenceFallback is the reference probability of unseen words.
	// 0 selects 1/(reference total + 1).
	ReferenceFallback float64 `mapstructure:"reference_fallback"`
}

func (*Weirdness) Name() string { return NameWeirdness }

func (a *Weirdness) validate() error { return validateFallback(a.Name(), a.ReferenceFallback) }

func (a *Weirdness) Prepare(in Input) (ScoreFunc, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}
	c, err := newContrast(a.Name(), in, a.ReferenceFallback)
	if err != nil {
		return nil, err
	}
	return func(id stats.TermID) float64 {
		words := c.idx.Words(id)
		if len(words) == 0 {
			return 0
		}
		var sum float64
		for _, w := range words {
			d := c.domain(w)
			if d == 0 {
				return 0
			}
			sum += math.Log(d / c.reference(w))
		}
		return math.Exp(sum / float64(len(words)))
	}, nil
}

// GlossEx combines domain specificity with term cohesion:
//
//	alpha * mean_w ln(p_D(w)/p_R(w)) + beta * cohesion
type GlossEx struct {
	Alpha             float64 `mapstructure:"alpha"`
	Beta              float64 `mapstructure:"beta"`
	ReferenceFallback float64 `mapstructure:"reference_fallback"`
}

// NewGlossEx returns GlossEx with the usual 0.2/0.8 weighting.
func NewGlossEx() *GlossEx {
	return &GlossEx{Alpha: 0.2, Beta: 0.8}
}

func (*GlossEx) Name() string { return NameGlossEx }

func (a *GlossEx) validate() error {
	if err := validateWeights(a.Name(), a.Alpha, a.Beta); err != nil {
		return err
	}
	return validateFallback(a.Name(), a.ReferenceFallback)
}

func (a *GlossEx) Prepare(in Input) (ScoreFunc, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}
	c, err := newContrast(a.Name(), in, a.ReferenceFallback)
	if err != nil {
		return nil, err
	}
	return func(id stats.TermID) float64 {
		words := c.idx.Words(id)
		if len(words) == 0 {
			return 0
		}
		var td float64
		for _, w := range words {
			if d := c.domain(w); d > 0 {
				td += math.Log(d / c.reference(w))
			}
		}
		td /= float64(len(words))
		return a.Alpha*td + a.Beta*c.cohesion(id)
	}, nil
}

// TermEx extends GlossEx with domain consensus, the entropy of the term's
// distribution over documents:
//
//	alpha * relevance + beta * consensus + zeta * cohesion
//
// Relevance is the mean over words of p_D / max(p_D, p_R).
type TermEx struct {
	Alpha             float64 `mapstructure:"alpha"`
	Beta              float64 `mapstructure:"beta"`
	Zeta              float64 `mapstructure:"zeta"`
	ReferenceFallback float64 `mapstructure:"reference_fallback"`
}

// NewTermEx returns TermEx with equal weights.
func NewTermEx() *TermEx {
	return &TermEx{Alpha: 1.0 / 3, Beta: 1.0 / 3, Zeta: 1.0 / 3}
}

func (*TermEx) Name() string { return NameTermEx }

func (a *TermEx) validate() error {
	if err := validateWeights(a.Name(), a.Alpha, a.Beta, a.Zeta); err != nil {
		return err
	}
	return validateFallback(a.Name(), a.ReferenceFallback)
}

func (a *TermEx) Prepare(in Input) (ScoreFunc, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}
	c, err := newContrast(a.Name(), in, a.ReferenceFallback)
	if err != nil {
		return nil, err
	}
	return func(id stats.TermID) float64 {
		words := c.idx.Words(id)
		if len(words) == 0 {
			return 0
		}
		var dr float64
		for _, w := range words {
			d, r := c.domain(w), c.reference(w)
			if peak := math.Max(d, r); peak > 0 {
				dr += d / peak
			}
		}
		dr /= float64(len(words))
		return a.Alpha*dr + a.Beta*consensus(c.idx, id) + a.Zeta*c.cohesion(id)
	}, nil
}

// consensus is the entropy of a term's frequency distribution over the
// documents containing it. Without per-document counts the distribution is
// taken as uniform, giving ln(df).
func consensus(idx *stats.Index, id stats.TermID) float64 {
	counts := idx.DocumentCounts(id)
	if counts == nil {
		df := idx.DocumentFrequency(id)
		if df <= 1 {
			return 0
		}
		return math.Log(float64(df))
	}
	total := float64(idx.TotalFrequency(id))
	if total == 0 {
		return 0
	}
	var h float64
	for _, c := range counts {
		p := float64(c) / total
		h -= p * math.Log(p)
	}
	return h
}
