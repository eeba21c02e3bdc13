package algorithm

import (
	"math"

	"github.com/chrisptang/jate/pkg/jate/stats"
)

// TTF scores a term by its total frequency.
type TTF struct{}

func (*TTF) Name() string { return NameTTF }

func (a *TTF) Prepare(in Input) (ScoreFunc, error) {
	if err := requireIndex(a.Name(), in); err != nil {
		return nil, err
	}
	idx := in.Index
	return func(id stats.TermID) float64 {
		return float64(idx.TotalFrequency(id))
	}, nil
}

// ATTF scores a term by its average frequency per containing document.
type ATTF struct{}

func (*ATTF) Name() string { return NameATTF }

func (a *ATTF) Prepare(in Input) (ScoreFunc, error) {
	if err := requireIndex(a.Name(), in); err != nil {
		return nil, err
	}
	idx := in.Index
	return func(id stats.TermID) float64 {
		return float64(idx.TotalFrequency(id)) / docFreq(idx, id)
	}, nil
}

// TFIDF scores a term by tf * ln(N/df).
type TFIDF struct{}

func (*TFIDF) Name() string { return NameTFIDF }

func (a *TFIDF) Prepare(in Input) (ScoreFunc, error) {
	if err := requireIndex(a.Name(), in); err != nil {
		return nil, err
	}
	idx := in.Index
	n := float64(idx.Documents())
	return func(id stats.TermID) float64 {
		if n == 0 {
			return 0
		}
		return float64(idx.TotalFrequency(id)) * math.Log(n/docFreq(idx, id))
	}, nil
}

// RIDF (residual IDF) scores how much a term's observed IDF exceeds the IDF
// expected if its occurrences were Poisson-distributed over documents.
type RIDF struct{}

func (*RIDF) Name() string { return NameRIDF }

func (a *RIDF) Prepare(in Input) (ScoreFunc, error) {
	if err := requireIndex(a.Name(), in); err != nil {
		return nil, err
	}
	idx := in.Index
	n := float64(idx.Documents())
	return func(id stats.TermID) float64 {
		ttf := float64(idx.TotalFrequency(id))
		if n == 0 || ttf == 0 {
			return 0
		}
		observed := math.Log2(n / docFreq(idx, id))
		expected := -math.Log2(poissonAtLeastOne(ttf / n))
		return observed - expected
	}, nil
}

// docFreq returns the document frequency with zero guarded to one.
func docFreq(idx *stats.Index, id stats.TermID) float64 {
	df := idx.DocumentFrequency(id)
	if df < 1 {
		return 1
	}
	return float64(df)
}

// poissonAtLeastOne is the Poisson survival function P(X >= 1) for mean
// lambda, i.e. the probability that a document contains the term at least
// once.
func poissonAtLeastOne(lambda float64) float64 {
	return -math.Expm1(-lambda)
}
