package stats

import (
	"context"
	"runtime"
	"strings"

	"github.com/RoaringBitmap/roaring"
	"golang.org/x/sync/errgroup"

	"github.com/chrisptang/jate/pkg/jate/term"
)

// Document is one corpus document whose text was already segmented into
// candidate terms by an upstream extractor.
type Document struct {
	ID        string     `json:"id"`
	Sentences []Sentence `json:"sentences"`
}

// Sentence is the co-occurrence context used by ChiSquare.
type Sentence struct {
	// Tokens is the full word stream of the sentence. When empty, word
	// frequencies are derived from the candidates' words instead.
	Tokens []string `json:"tokens,omitempty"`
	// Candidates lists candidate occurrences in order of appearance.
	Candidates []string `json:"candidates"`
}

// Option configures Build.
type Option func(*buildOptions)

type buildOptions struct {
	workers int
}

// WithWorkers bounds the number of documents counted concurrently.
func WithWorkers(n int) Option {
	return func(o *buildOptions) {
		if n > 0 {
			o.workers = n
		}
	}
}

// docCounts holds the statistics of a single document before merging.
type docCounts struct {
	order     []string // keys in first-appearance order
	surfaces  map[string]string
	freq      map[string]int64
	words     map[string]int64
	wordTotal int64
	sentences [][]string // distinct keys per sentence
}

// Build counts a corpus in one bulk pass. Documents are counted in parallel
// and merged in document order, so the resulting index (including TermID
// assignment) does not depend on scheduling.
func Build(ctx context.Context, docs []Document, opts ...Option) (*Index, error) {
	o := buildOptions{workers: runtime.GOMAXPROCS(0)}
	for _, fn := range opts {
		fn(&o)
	}

	partials := make([]docCounts, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i := range docs {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			partials[i] = countDocument(docs[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b := newBuilder(int64(len(docs)))
	for i := range partials {
		b.merge(&partials[i])
	}
	return b.finish(), nil
}

func countDocument(d Document) docCounts {
	c := docCounts{
		surfaces: make(map[string]string),
		freq:     make(map[string]int64),
		words:    make(map[string]int64),
	}

	for _, s := range d.Sentences {
		seen := make(map[string]struct{}, len(s.Candidates))
		var distinct []string
		for _, cand := range s.Candidates {
			key := term.Normalize(cand)
			if key == "" {
				continue
			}
			if _, ok := c.freq[key]; !ok {
				c.order = append(c.order, key)
				c.surfaces[key] = strings.Join(strings.Fields(cand), " ")
			}
			c.freq[key]++
			if _, ok := seen[key]; !ok {
				seen[key] = struct{}{}
				distinct = append(distinct, key)
			}
			if len(s.Tokens) == 0 {
				for _, w := range term.Words(key) {
					c.words[w]++
					c.wordTotal++
				}
			}
		}
		for _, tok := range s.Tokens {
			w := strings.ToLower(strings.TrimSpace(tok))
			if w == "" {
				continue
			}
			c.words[w]++
			c.wordTotal++
		}
		if len(distinct) > 0 {
			c.sentences = append(c.sentences, distinct)
		}
	}

	return c
}

type builder struct {
	x         *Index
	sentences uint32 // next sentence ordinal
}

func newBuilder(documents int64) *builder {
	return &builder{x: &Index{
		documents: documents,
		wordFreq:  make(map[string]int64),
		lookup:    make(map[string]TermID),
	}}
}

func (b *builder) add(surface, key string) TermID {
	id := TermID(len(b.x.entries))
	b.x.lookup[key] = id
	b.x.entries = append(b.x.entries, entry{
		surface: surface,
		key:     key,
		words:   term.Words(key),
	})
	return id
}

func (b *builder) merge(c *docCounts) {
	x := b.x
	for _, key := range c.order {
		id, ok := x.lookup[key]
		if !ok {
			id = b.add(c.surfaces[key], key)
			x.entries[id].sents = roaring.NewBitmap()
			x.weight = append(x.weight, 0)
		}
		e := &x.entries[id]
		f := c.freq[key]
		e.ttf += f
		e.df++
		e.counts = append(e.counts, f)
	}

	for w, f := range c.words {
		x.wordFreq[w] += f
	}
	x.words += c.wordTotal

	for _, sentence := range c.sentences {
		ord := b.sentences
		b.sentences++
		n := int64(len(sentence))
		x.contextTerms += n
		for _, key := range sentence {
			id := x.lookup[key]
			x.entries[id].sents.Add(ord)
			x.weight[id] += n
		}
	}
}

func (b *builder) finish() *Index {
	x := b.x
	for i := range x.entries {
		e := &x.entries[i]
		if e.sents != nil {
			e.sents.RunOptimize()
		}
	}
	x.containedIn = nesting(x.entries, x.lookup)
	return x
}

// nesting precomputes, for every candidate, the longer candidates that
// contain it as a contiguous word sub-sequence.
func nesting(entries []entry, lookup map[string]TermID) [][]TermID {
	out := make([][]TermID, len(entries))
	for id := range entries {
		words := entries[id].words
		n := len(words)
		if n < 2 {
			continue
		}
		seen := make(map[TermID]struct{})
		for size := 1; size < n; size++ {
			for start := 0; start+size <= n; start++ {
				sub, ok := lookup[strings.Join(words[start:start+size], " ")]
				if !ok {
					continue
				}
				if _, dup := seen[sub]; dup {
					continue
				}
				seen[sub] = struct{}{}
				out[sub] = append(out[sub], TermID(id))
			}
		}
	}
	return out
}
