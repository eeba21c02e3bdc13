package eval

import "strings"

// GoldStandard is a human-curated set of correct terms. It carries no
// scores; uniqueness after normalization is enforced by the Evaluator,
// since normalization is part of the evaluation config.
type GoldStandard struct {
	terms []string
}

// NewGoldStandard trims each term, drops empty entries and removes exact
// duplicates, keeping first-seen order.
func NewGoldStandard(terms []string) *GoldStandard {
	seen := make(map[string]struct{}, len(terms))
	g := &GoldStandard{terms: make([]string, 0, len(terms))}
	for _, t := range terms {
		t = strings.Join(strings.Fields(t), " ")
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		g.terms = append(g.terms, t)
	}
	return g
}

// Terms returns a copy of the gold terms.
func (g *GoldStandard) Terms() []string {
	return append([]string(nil), g.terms...)
}

// Len returns the number of distinct gold terms.
func (g *GoldStandard) Len() int { return len(g.terms) }
