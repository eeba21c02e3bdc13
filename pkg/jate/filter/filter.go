// Package filter implements the candidate pre-filter and the post-ranking
// top-K-percent cutoff shared by every scoring algorithm.
package filter

import (
	"fmt"
	"math"

	"github.com/chrisptang/jate/pkg/jate/internalerr"
	"github.com/chrisptang/jate/pkg/jate/rank"
	"github.com/chrisptang/jate/pkg/jate/stats"
)

// Config holds both policies. The zero value disables filtering.
type Config struct {
	// MinTotalFrequency discards candidates occurring fewer times. 0 disables.
	MinTotalFrequency int64 `yaml:"min_total_frequency" json:"min_total_frequency"`
	// TopKPercent keeps the leading fraction of the ranked list, in (0,1].
	// 0 means 1.0.
	TopKPercent float64 `yaml:"top_k_percent" json:"top_k_percent"`
}

// Validate rejects out-of-domain parameters.
func (c Config) Validate() error {
	if c.MinTotalFrequency < 0 {
		return fmt.Errorf("%w: minimum total frequency %d is negative", internalerr.ErrInvalidConfig, c.MinTotalFrequency)
	}
	if c.TopKPercent < 0 || c.TopKPercent > 1 || math.IsNaN(c.TopKPercent) {
		return fmt.Errorf("%w: top-k percent %v outside (0,1]", internalerr.ErrInvalidConfig, c.TopKPercent)
	}
	return nil
}

// Fraction returns the effective cutoff fraction.
func (c Config) Fraction() float64 {
	if c.TopKPercent == 0 {
		return 1
	}
	return c.TopKPercent
}

// Prefilter returns the candidates whose total frequency reaches min, in
// insertion order.
func Prefilter(idx *stats.Index, min int64) []stats.TermID {
	ids := idx.Terms()
	if min <= 0 {
		return ids
	}
	kept := ids[:0]
	for _, id := range ids {
		if idx.TotalFrequency(id) >= min {
			kept = append(kept, id)
		}
	}
	return kept
}

const floatSlack = 1e-9

// Cutoff keeps floor(len(list)*f) leading entries of a ranked list, and at
// least one entry when the list is non-empty. f >= 1 keeps everything.
// Products within floatSlack below an integer count as that integer, so a
// fraction like 0.29 of 100 keeps 29 rather than 28.
func Cutoff(list rank.List, f float64) rank.List {
	n := len(list)
	if n == 0 || f >= 1 {
		return list
	}
	keep := int(math.Floor(float64(n)*f + floatSlack))
	if keep < 1 {
		keep = 1
	}
	return list[:keep]
}
