// Package stats holds the read-only per-term corpus statistics every scoring
// algorithm consumes.
//
// An Index is built once, either from documents that were already segmented
// into candidate terms (Build) or from pre-computed counts (FromRecords), and
// is immutable afterwards. All query methods are safe for concurrent use.
package stats

import (
	"fmt"

	"github.com/RoaringBitmap/roaring"

	"github.com/chrisptang/jate/pkg/jate/internalerr"
	"github.com/chrisptang/jate/pkg/jate/term"
)

// TermID identifies a candidate term inside one Index. IDs are dense and
// follow the order in which candidates first appeared, which is also the
// tie-break order used when ranking.
type TermID uint32

// Stats is the value view of one candidate's counts.
type Stats struct {
	Term              string
	TotalFrequency    int64
	DocumentFrequency int64
	ContainedIn       []Frequency // longer candidates this term is nested in
}

// Frequency pairs a candidate with its total frequency.
type Frequency struct {
	Term           string
	TotalFrequency int64
}

type entry struct {
	surface string
	key     string
	words   []string
	ttf     int64
	df      int64
	sents   *roaring.Bitmap // sentence ordinals; nil when built from records
	counts  []int64         // per containing document; nil when unknown
}

// Index is the immutable statistics snapshot of one corpus.
type Index struct {
	documents int64
	words     int64
	wordFreq  map[string]int64

	entries     []entry
	lookup      map[string]TermID
	containedIn [][]TermID

	// sentence-level contexts, only available when built from documents
	contextTerms int64
	weight       []int64
}

// Documents returns the corpus size N.
func (x *Index) Documents() int64 { return x.documents }

// TotalWords returns the number of word tokens seen in the corpus.
func (x *Index) TotalWords() int64 { return x.words }

// Len returns the number of candidate terms.
func (x *Index) Len() int { return len(x.entries) }

// Terms returns every candidate in insertion order.
func (x *Index) Terms() []TermID {
	ids := make([]TermID, len(x.entries))
	for i := range ids {
		ids[i] = TermID(i)
	}
	return ids
}

// Lookup resolves a term string to its ID. Absent terms return
// internalerr.ErrNotFound.
func (x *Index) Lookup(t string) (TermID, error) {
	id, ok := x.lookup[term.Normalize(t)]
	if !ok {
		return 0, fmt.Errorf("%w: term %q", internalerr.ErrNotFound, t)
	}
	return id, nil
}

// Term returns the surface form of a candidate.
func (x *Index) Term(id TermID) string { return x.entries[id].surface }

// Key returns the normalized form of a candidate.
func (x *Index) Key(id TermID) string { return x.entries[id].key }

// Words returns the normalized words of a candidate. The slice is shared and
// must not be modified.
func (x *Index) Words(id TermID) []string { return x.entries[id].words }

// WordCount returns the length of a candidate in words.
func (x *Index) WordCount(id TermID) int { return len(x.entries[id].words) }

// TotalFrequency returns the number of occurrences of a candidate.
func (x *Index) TotalFrequency(id TermID) int64 { return x.entries[id].ttf }

// DocumentFrequency returns the number of documents containing a candidate.
func (x *Index) DocumentFrequency(id TermID) int64 { return x.entries[id].df }

// DocumentCounts returns the candidate's frequency in each document that
// contains it, in document order, or nil when the index was built from
// records without per-document counts.
func (x *Index) DocumentCounts(id TermID) []int64 { return x.entries[id].counts }

// ContainedIn returns the longer candidates of which this candidate is a
// contiguous word sub-sequence, in ascending ID order.
func (x *Index) ContainedIn(id TermID) []TermID { return x.containedIn[id] }

// WordFrequency returns the corpus frequency of a single word.
func (x *Index) WordFrequency(word string) int64 { return x.wordFreq[word] }

// HasContexts reports whether sentence-level co-occurrence was recorded.
func (x *Index) HasContexts() bool { return x.contextTerms > 0 }

// ContextTerms returns the total number of candidate slots over all
// sentences (each sentence counts its distinct candidates).
func (x *Index) ContextTerms() int64 { return x.contextTerms }

// ContextWeight returns the number of candidate slots in the sentences where
// the candidate occurs.
func (x *Index) ContextWeight(id TermID) int64 {
	if x.weight == nil {
		return 0
	}
	return x.weight[id]
}

// Sentences returns the number of sentences in which a candidate occurs, or
// 0 for indexes built from records.
func (x *Index) Sentences(id TermID) int64 {
	s := x.entries[id].sents
	if s == nil {
		return 0
	}
	return int64(s.GetCardinality())
}

// Cooccurrence returns the number of sentences in which both candidates occur.
func (x *Index) Cooccurrence(a, b TermID) int64 {
	if a == b {
		return 0
	}
	sa, sb := x.entries[a].sents, x.entries[b].sents
	if sa == nil || sb == nil {
		return 0
	}
	return int64(sa.AndCardinality(sb))
}

// Stats returns the counts for a term string. A term absent from the corpus
// yields zero statistics together with internalerr.ErrNotFound; callers may
// treat that as zero frequency.
func (x *Index) Stats(t string) (Stats, error) {
	id, err := x.Lookup(t)
	if err != nil {
		return Stats{Term: t}, err
	}
	e := x.entries[id]
	s := Stats{
		Term:              e.surface,
		TotalFrequency:    e.ttf,
		DocumentFrequency: e.df,
	}
	for _, parent := range x.containedIn[id] {
		s.ContainedIn = append(s.ContainedIn, Frequency{
			Term:           x.entries[parent].surface,
			TotalFrequency: x.entries[parent].ttf,
		})
	}
	return s, nil
}
