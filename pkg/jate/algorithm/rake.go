package algorithm

import "github.com/chrisptang/jate/pkg/jate/stats"

// RAKE scores a phrase as the sum of its words' degree/frequency ratios,
// where degree and frequency come from the word co-occurrence graph of all
// candidate phrases.
type RAKE struct{}

func (*RAKE) Name() string { return NameRAKE }

func (a *RAKE) Prepare(in Input) (ScoreFunc, error) {
	if err := requireIndex(a.Name(), in); err != nil {
		return nil, err
	}
	idx := in.Index
	ratio := buildWordGraph(idx, in.Candidates).ratios()
	return func(id stats.TermID) float64 {
		var score float64
		for _, w := range idx.Words(id) {
			score += ratio[w]
		}
		return score
	}, nil
}

// wordGraph is the undirected co-occurrence graph over candidate words.
// Each phrase occurrence links every word position to every word position of
// the same phrase, itself included, so a word's degree counts itself once
// per occurrence.
type wordGraph struct {
	adj  map[string]map[string]int64
	freq map[string]int64
}

func buildWordGraph(idx *stats.Index, candidates []stats.TermID) *wordGraph {
	g := &wordGraph{
		adj:  make(map[string]map[string]int64),
		freq: make(map[string]int64),
	}
	for _, id := range candidates {
		weight := idx.TotalFrequency(id)
		words := idx.Words(id)
		for _, w := range words {
			g.freq[w] += weight
			edges := g.adj[w]
			if edges == nil {
				edges = make(map[string]int64)
				g.adj[w] = edges
			}
			for _, other := range words {
				edges[other] += weight
			}
		}
	}
	return g
}

func (g *wordGraph) degree(word string) int64 {
	var d int64
	for _, w := range g.adj[word] {
		d += w
	}
	return d
}

func (g *wordGraph) ratios() map[string]float64 {
	out := make(map[string]float64, len(g.freq))
	for w, f := range g.freq {
		if f > 0 {
			out[w] = float64(g.degree(w)) / float64(f)
		}
	}
	return out
}
