// Package reference provides word frequencies from a general-domain corpus
// for the contrastive scoring algorithms.
package reference

import "strings"

// Provider exposes reference-corpus frequencies. A word missing from the
// reference corpus is a valid state, reported by ok == false.
type Provider interface {
	Frequency(word string) (freq int64, ok bool)
	Total() int64
}

// Table is an in-memory Provider.
type Table struct {
	freq  map[string]int64
	total int64
}

// NewTable builds a table from word frequencies. Keys are lower-cased and
// frequencies of keys that collide after lower-casing are summed.
// Non-positive frequencies are ignored.
func NewTable(freqs map[string]int64) *Table {
	t := &Table{freq: make(map[string]int64, len(freqs))}
	for w, f := range freqs {
		t.Add(w, f)
	}
	return t
}

// Add records additional occurrences of a word. Used by loaders while the
// table is being populated; a Table must not be modified once shared.
func (t *Table) Add(word string, freq int64) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" || freq <= 0 {
		return
	}
	t.freq[word] += freq
	t.total += freq
}

// Frequency implements Provider.
func (t *Table) Frequency(word string) (int64, bool) {
	f, ok := t.freq[word]
	return f, ok
}

// Total implements Provider.
func (t *Table) Total() int64 { return t.total }

// Len returns the number of distinct words.
func (t *Table) Len() int { return len(t.freq) }
