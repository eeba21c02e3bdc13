// Package term defines the identity of candidate terms.
//
// A term keeps its case-preserved surface form for display, while every
// comparison (index lookups, nesting, ranking uniqueness) goes through the
// normalized form: lower-cased with whitespace collapsed.
package term

import "strings"

// Normalize returns the identity form of a term.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Words splits the identity form of a term into its words.
func Words(s string) []string {
	return strings.Fields(strings.ToLower(s))
}
