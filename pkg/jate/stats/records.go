package stats

import (
	"fmt"
	"strings"

	"github.com/chrisptang/jate/pkg/jate/internalerr"
	"github.com/chrisptang/jate/pkg/jate/term"
)

// Record carries pre-computed counts for one candidate term.
type Record struct {
	Term              string
	TotalFrequency    int64
	DocumentFrequency int64
	// DocumentCounts optionally lists the term's frequency in each document
	// that contains it. When set it must have DocumentFrequency entries
	// summing to TotalFrequency.
	DocumentCounts []int64
}

// FromRecords builds an index from pre-computed statistics over a corpus of
// the given size. Records keep their order as insertion order. Word
// frequencies are derived from the candidates' words weighted by their total
// frequency; sentence contexts are not available.
//
// Malformed statistics are rejected with internalerr.ErrInvalidInput before
// any algorithm can observe them.
func FromRecords(documents int64, records []Record) (*Index, error) {
	if documents < 0 {
		return nil, fmt.Errorf("%w: negative corpus size %d", internalerr.ErrInvalidInput, documents)
	}

	b := newBuilder(documents)
	x := b.x
	for i, r := range records {
		key := term.Normalize(r.Term)
		if key == "" {
			return nil, fmt.Errorf("%w: record %d has an empty term", internalerr.ErrInvalidInput, i)
		}
		if err := validateRecord(documents, r); err != nil {
			return nil, err
		}
		if _, dup := x.lookup[key]; dup {
			return nil, fmt.Errorf("%w: duplicate term %q", internalerr.ErrInvalidInput, r.Term)
		}

		id := b.add(strings.Join(strings.Fields(r.Term), " "), key)
		e := &x.entries[id]
		e.ttf = r.TotalFrequency
		e.df = r.DocumentFrequency
		if r.DocumentCounts != nil {
			e.counts = append([]int64(nil), r.DocumentCounts...)
		}
		for _, w := range e.words {
			x.wordFreq[w] += r.TotalFrequency
			x.words += r.TotalFrequency
		}
	}

	return b.finish(), nil
}

func validateRecord(documents int64, r Record) error {
	if r.TotalFrequency < 0 || r.DocumentFrequency < 0 {
		return fmt.Errorf("%w: negative frequency for %q", internalerr.ErrInvalidInput, r.Term)
	}
	if r.DocumentFrequency > r.TotalFrequency {
		return fmt.Errorf("%w: document frequency %d exceeds total frequency %d for %q",
			internalerr.ErrInvalidInput, r.DocumentFrequency, r.TotalFrequency, r.Term)
	}
	if r.DocumentFrequency > documents {
		return fmt.Errorf("%w: document frequency %d exceeds corpus size %d for %q",
			internalerr.ErrInvalidInput, r.DocumentFrequency, documents, r.Term)
	}
	if r.DocumentCounts == nil {
		return nil
	}
	if int64(len(r.DocumentCounts)) != r.DocumentFrequency {
		return fmt.Errorf("%w: %d document counts for document frequency %d of %q",
			internalerr.ErrInvalidInput, len(r.DocumentCounts), r.DocumentFrequency, r.Term)
	}
	var sum int64
	for _, c := range r.DocumentCounts {
		if c <= 0 {
			return fmt.Errorf("%w: non-positive document count for %q", internalerr.ErrInvalidInput, r.Term)
		}
		sum += c
	}
	if sum != r.TotalFrequency {
		return fmt.Errorf("%w: document counts of %q sum to %d, total frequency is %d",
			internalerr.ErrInvalidInput, r.Term, sum, r.TotalFrequency)
	}
	return nil
}
