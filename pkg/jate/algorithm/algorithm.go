// Package algorithm implements the interchangeable term scoring algorithms.
//
// Every algorithm goes through two phases. Prepare builds whatever
// corpus-wide structure the algorithm needs (a co-occurrence graph, the set
// of frequent terms, reference probabilities) and returns a ScoreFunc; the
// ScoreFunc is pure and may be called concurrently for different terms.
package algorithm

import (
	"fmt"
	"sort"

	"github.com/mitchellh/mapstructure"

	"github.com/chrisptang/jate/pkg/jate/internalerr"
	"github.com/chrisptang/jate/pkg/jate/reference"
	"github.com/chrisptang/jate/pkg/jate/stats"
)

// Registered algorithm names.
const (
	NameTTF       = "ttf"
	NameATTF      = "attf"
	NameTFIDF     = "tfidf"
	NameRIDF      = "ridf"
	NameChiSquare = "chisquare"
	NameCValue    = "cvalue"
	NameWeirdness = "weirdness"
	NameGlossEx   = "glossex"
	NameTermEx    = "termex"
	NameRAKE      = "rake"
)

// Input is what an algorithm scores against.
type Input struct {
	Index      *stats.Index
	Reference  reference.Provider // optional; required by contrastive algorithms
	Candidates []stats.TermID     // the filtered candidate set, insertion order
}

// ScoreFunc scores one candidate. Higher is more term-like.
type ScoreFunc func(id stats.TermID) float64

// Algorithm is a term scoring algorithm.
type Algorithm interface {
	Name() string
	Prepare(in Input) (ScoreFunc, error)
}

type validator interface {
	validate() error
}

var registry = map[string]func() Algorithm{
	NameTTF:       func() Algorithm { return &TTF{} },
	NameATTF:      func() Algorithm { return &ATTF{} },
	NameTFIDF:     func() Algorithm { return &TFIDF{} },
	NameRIDF:      func() Algorithm { return &RIDF{} },
	NameChiSquare: func() Algorithm { return NewChiSquare() },
	NameCValue:    func() Algorithm { return &CValue{} },
	NameWeirdness: func() Algorithm { return &Weirdness{} },
	NameGlossEx:   func() Algorithm { return NewGlossEx() },
	NameTermEx:    func() Algorithm { return NewTermEx() },
	NameRAKE:      func() Algorithm { return &RAKE{} },
}

// Names returns the registered algorithm names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New constructs a registered algorithm and applies named options on top of
// its defaults. Values are weakly typed ("0.3" decodes into a float64);
// unknown option names and out-of-domain values are rejected with
// internalerr.ErrInvalidConfig.
func New(name string, params map[string]any) (Algorithm, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown algorithm %q", internalerr.ErrInvalidConfig, name)
	}
	a := ctor()

	if len(params) > 0 {
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           a,
			WeaklyTypedInput: true,
			ErrorUnused:      true,
		})
		if err != nil {
			return nil, err
		}
		if err := dec.Decode(params); err != nil {
			return nil, fmt.Errorf("%w: %s options: %v", internalerr.ErrInvalidConfig, name, err)
		}
	}

	if v, ok := a.(validator); ok {
		if err := v.validate(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func requireIndex(name string, in Input) error {
	if in.Index == nil {
		return fmt.Errorf("%w: %s needs a statistics index", internalerr.ErrInvalidConfig, name)
	}
	return nil
}
