// Package keywords turns free text into normalized keyword sets.
package keywords

import (
	"sort"
	"strings"
	"unicode"
)

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "but": {}, "by": {},
	"for": {}, "from": {}, "has": {}, "have": {}, "he": {}, "in": {}, "is": {}, "it": {}, "its": {},
	"of": {}, "on": {}, "or": {}, "that": {}, "the": {}, "their": {}, "they": {}, "this": {}, "to": {},
	"was": {}, "were": {}, "will": {}, "with": {}, "you": {}, "your": {}, "we": {}, "our": {}, "us": {},
}

// Short tokens that still carry meaning in tech postings.
var shortAllowed = map[string]struct{}{
	"c": {}, "go": {}, "ai": {}, "ml": {}, "ui": {}, "ux": {}, "qa": {}, "c#": {}, "c++": {},
}

// Set is a set of keywords.
type Set map[string]struct{}

// Extract tokenizes text into a keyword set. Tokens are split on anything that
// is not a letter, a digit, '+' or '#', lowercased, and filtered against the
// stopword list. Tokens of two bytes or fewer survive only when allow-listed.
func Extract(text string) Set {
	set := make(Set)
	tokens := strings.FieldsFunc(text, isSeparator)

	for _, token := range tokens {
		lower := strings.ToLower(token)
		if _, stop := stopwords[lower]; stop {
			continue
		}

		if len(lower) <= 2 {
			if _, ok := shortAllowed[lower]; !ok {
				continue
			}
		}

		set[lower] = struct{}{}
	}

	return set
}

func isSeparator(r rune) bool {
	if r == '+' || r == '#' {
		return false
	}
	return !unicode.IsLetter(r) && !unicode.IsNumber(r)
}

// Has reports whether token is in the set.
func (s Set) Has(token string) bool {
	_, ok := s[token]
	return ok
}

// Len returns the set size.
func (s Set) Len() int { return len(s) }

// Intersect returns the tokens present in both sets.
func (s Set) Intersect(other Set) Set {
	small, large := s, other
	if len(small) > len(large) {
		small, large = large, small
	}

	out := make(Set)
	for token := range small {
		if large.Has(token) {
			out[token] = struct{}{}
		}
	}
	return out
}

// Difference returns the tokens of s missing from other.
func (s Set) Difference(other Set) Set {
	out := make(Set)
	for token := range s {
		if !other.Has(token) {
			out[token] = struct{}{}
		}
	}
	return out
}

// Sorted returns the tokens in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for token := range s {
		out = append(out, token)
	}
	sort.Strings(out)
	return out
}

// Sample returns up to n tokens in lexical order.
func (s Set) Sample(n int) []string {
	sorted := s.Sorted()
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
