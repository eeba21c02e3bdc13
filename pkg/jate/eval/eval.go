// Package eval measures a ranked term list against a gold standard.
package eval

import (
	"fmt"
	"math"
	"strings"

	"github.com/chrisptang/jate/pkg/jate/internalerr"
	"github.com/chrisptang/jate/pkg/jate/rank"
)

// RecallKey is the report key of the recall metric.
const RecallKey = "recall"

// PrecisionKey returns the report key of precision at k.
func PrecisionKey(k int) string { return fmt.Sprintf("precision@%d", k) }

// DefaultKs is the precision cut-off grid used for benchmark reports.
var DefaultKs = []int{50, 100, 500, 1000, 3000, 5000, 8000, 10000}

// Config controls how candidates are matched against the gold standard.
type Config struct {
	Normalization       Normalization `yaml:"normalization" json:"normalization"`
	NormalizeCandidates bool          `yaml:"normalize_candidates" json:"normalize_candidates"`
	NormalizeGold       bool          `yaml:"normalize_gold" json:"normalize_gold"`
	// Partial matches a candidate and a gold term when either contains the
	// other on word boundaries.
	Partial bool  `yaml:"partial" json:"partial"`
	Ks      []int `yaml:"ks" json:"ks"`
	// RoundDigits rounds reported values to this many decimals; 0 disables.
	RoundDigits int `yaml:"round_digits" json:"round_digits"`
}

// DefaultConfig lowercases and strips symbols on both sides and reports the
// default K grid rounded to two decimals.
func DefaultConfig() Config {
	return Config{
		Normalization:       Normalization{Lowercase: true, IgnoreSymbols: true},
		NormalizeCandidates: true,
		NormalizeGold:       true,
		Ks:                  append([]int(nil), DefaultKs...),
		RoundDigits:         2,
	}
}

// Validate reports the first out-of-domain value.
func (c Config) Validate() error {
	for _, k := range c.Ks {
		if k <= 0 {
			return fmt.Errorf("%w: precision cut-off %d must be positive", internalerr.ErrInvalidConfig, k)
		}
	}
	if c.RoundDigits < 0 {
		return fmt.Errorf("%w: round_digits %d is negative", internalerr.ErrInvalidConfig, c.RoundDigits)
	}
	return nil
}

// Report is the outcome of one evaluation.
type Report struct {
	Metrics map[string]float64 `json:"metrics"`
	Params  Params             `json:"params"`
}

// Params records what a Report was computed with.
type Params struct {
	Config     Config `json:"config"`
	Candidates int    `json:"candidates"`
	GoldTerms  int    `json:"gold_terms"`
}

// Evaluator computes precision and recall of one ranked list. Each gold
// term satisfies at most one candidate, so normalization collisions are not
// double counted. Match marks are computed once, lazily, in rank order.
//
// An Evaluator is not safe for concurrent use.
type Evaluator struct {
	cfg        Config
	candidates []string
	gold       []string
	goldIdx    map[string]int
	claimed    []bool
	hits       []int // hits[i] is the number of matches among the first i candidates
}

// NewEvaluator prepares an evaluation of ranked against gold. Neither input
// is modified.
func NewEvaluator(ranked []string, gold *GoldStandard, cfg Config) (*Evaluator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if gold == nil {
		gold = NewGoldStandard(nil)
	}

	e := &Evaluator{
		cfg:        cfg,
		candidates: make([]string, len(ranked)),
		goldIdx:    make(map[string]int, gold.Len()),
		hits:       []int{0},
	}
	for i, c := range ranked {
		if cfg.NormalizeCandidates {
			c = cfg.Normalization.Apply(c)
		}
		e.candidates[i] = c
	}
	for _, g := range gold.terms {
		if cfg.NormalizeGold {
			g = cfg.Normalization.Apply(g)
		}
		if g == "" {
			continue
		}
		if _, dup := e.goldIdx[g]; dup {
			continue
		}
		e.goldIdx[g] = len(e.gold)
		e.gold = append(e.gold, g)
	}
	e.claimed = make([]bool, len(e.gold))
	return e, nil
}

// GoldTerms returns the number of distinct gold terms after normalization.
func (e *Evaluator) GoldTerms() int { return len(e.gold) }

// PrecisionAt returns the fraction of the top k candidates matching a gold
// term. A k beyond the list length uses the whole list; an empty list has
// precision 0.
func (e *Evaluator) PrecisionAt(k int) (float64, error) {
	if k <= 0 {
		return 0, fmt.Errorf("%w: precision cut-off %d must be positive", internalerr.ErrInvalidConfig, k)
	}
	n := min(k, len(e.candidates))
	if n == 0 {
		return 0, nil
	}
	e.extend(n)
	return e.round(float64(e.hits[n]) / float64(n)), nil
}

// Recall returns the fraction of gold terms matched by any candidate. An
// empty gold standard has recall 0.
func (e *Evaluator) Recall() float64 {
	if len(e.gold) == 0 {
		return 0
	}
	var found int
	if e.cfg.Partial {
		for _, g := range e.gold {
			for _, c := range e.candidates {
				if c != "" && partialMatch(c, g) {
					found++
					break
				}
			}
		}
	} else {
		seen := make(map[string]struct{}, len(e.candidates))
		for _, c := range e.candidates {
			seen[c] = struct{}{}
		}
		for _, g := range e.gold {
			if _, ok := seen[g]; ok {
				found++
			}
		}
	}
	return e.round(float64(found) / float64(len(e.gold)))
}

// Report computes precision at every configured cut-off and recall.
func (e *Evaluator) Report() (Report, error) {
	r := Report{
		Metrics: make(map[string]float64, len(e.cfg.Ks)+1),
		Params: Params{
			Config:     e.cfg,
			Candidates: len(e.candidates),
			GoldTerms:  e.GoldTerms(),
		},
	}
	for _, k := range e.cfg.Ks {
		p, err := e.PrecisionAt(k)
		if err != nil {
			return Report{}, err
		}
		r.Metrics[PrecisionKey(k)] = p
	}
	r.Metrics[RecallKey] = e.Recall()
	return r, nil
}

// Evaluate reports precision and recall of a ranked list.
func Evaluate(list rank.List, gold *GoldStandard, cfg Config) (Report, error) {
	e, err := NewEvaluator(list.Terms(), gold, cfg)
	if err != nil {
		return Report{}, err
	}
	return e.Report()
}

func (e *Evaluator) extend(n int) {
	for i := len(e.hits) - 1; i < n; i++ {
		next := e.hits[i]
		if e.claim(e.candidates[i]) {
			next++
		}
		e.hits = append(e.hits, next)
	}
}

// claim marks the first unclaimed gold term matching c.
func (e *Evaluator) claim(c string) bool {
	if c == "" {
		return false
	}
	if !e.cfg.Partial {
		j, ok := e.goldIdx[c]
		if !ok || e.claimed[j] {
			return false
		}
		e.claimed[j] = true
		return true
	}
	for j, g := range e.gold {
		if !e.claimed[j] && partialMatch(c, g) {
			e.claimed[j] = true
			return true
		}
	}
	return false
}

func (e *Evaluator) round(v float64) float64 {
	if e.cfg.RoundDigits <= 0 {
		return v
	}
	p := math.Pow10(e.cfg.RoundDigits)
	return math.Round(v*p) / p
}

func partialMatch(a, b string) bool {
	if a == b {
		return true
	}
	pa, pb := " "+a+" ", " "+b+" "
	return strings.Contains(pa, pb) || strings.Contains(pb, pa)
}
