package eval

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
	"github.com/tangzero/inflector"
)

// Normalization selects the transformations applied to a term before
// matching. Whitespace is always collapsed when a side is normalized.
type Normalization struct {
	Lowercase     bool `yaml:"lowercase" json:"lowercase"`
	IgnoreSymbols bool `yaml:"ignore_symbols" json:"ignore_symbols"` // punctuation, hyphens and symbols become spaces
	IgnoreDigits  bool `yaml:"ignore_digits" json:"ignore_digits"`
	Singularize   bool `yaml:"singularize" json:"singularize"` // fold English plurals word by word
	Stem          bool `yaml:"stem" json:"stem"`               // Snowball English stemming word by word
}

// Apply normalizes one term.
func (n Normalization) Apply(s string) string {
	if n.Lowercase {
		s = strings.ToLower(s)
	}
	if n.IgnoreSymbols || n.IgnoreDigits {
		s = strings.Map(func(r rune) rune {
			switch {
			case n.IgnoreSymbols && (unicode.IsPunct(r) || unicode.IsSymbol(r)):
				return ' '
			case n.IgnoreDigits && unicode.IsDigit(r):
				return -1
			}
			return r
		}, s)
	}

	words := strings.Fields(s)
	if n.Singularize || n.Stem {
		for i, w := range words {
			if n.Singularize {
				w = inflector.Singularize(w)
			}
			if n.Stem {
				w = english.Stem(w, false)
			}
			words[i] = w
		}
	}
	return strings.Join(words, " ")
}
