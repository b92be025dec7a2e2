// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package keywords derives representative terms from abstract text by
// frequency ranking of non-stopword tokens.
package keywords

import (
	"strings"
	"unicode"
)

// DefaultCount is the number of keywords returned when none is configured.
const DefaultCount = 5

// Extractor returns the most frequent content words of a text.
type Extractor struct {
	n int
}

// New returns an Extractor that keeps the top n terms. n <= 0 uses
// DefaultCount.
func New(n int) *Extractor {
	if n <= 0 {
		n = DefaultCount
	}
	return &Extractor{n: n}
}

// Count returns the number of keywords the extractor keeps.
func (e *Extractor) Count() int { return e.n }

// Extract returns up to n lowercase alphabetic non-stopword tokens of text,
// most frequent first. Ties keep the order in which the tokens first
// appear. Empty or stopword-only text yields an empty slice.
func (e *Extractor) Extract(text string) []string {
	type entry struct {
		token string
		count int
	}

	var order []*entry
	seen := make(map[string]*entry)
	for _, tok := range Tokenize(text) {
		if !isAlpha(tok) || IsStopword(tok) {
			continue
		}
		if en, ok := seen[tok]; ok {
			en.count++
			continue
		}
		en := &entry{token: tok, count: 1}
		seen[tok] = en
		order = append(order, en)
	}

	// Stable insertion sort by descending count keeps first-seen order
	// among equal counts.
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && order[j].count > order[j-1].count; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}

	limit := e.n
	if limit > len(order) {
		limit = len(order)
	}
	out := make([]string, 0, limit)
	for _, en := range order[:limit] {
		out = append(out, en.token)
	}
	return out
}

// Tokenize lowercases text and splits it into word tokens. Surrounding
// punctuation is stripped and English clitics are split off at the first
// apostrophe ("cat's" becomes "cat" and "'s").
func Tokenize(text string) []string {
	var tokens []string
	for _, field := range strings.Fields(strings.ToLower(text)) {
		field = strings.TrimFunc(field, isEdgePunct)
		if field == "" {
			continue
		}
		if i := strings.IndexAny(field, "'’"); i > 0 {
			tokens = append(tokens, field[:i], field[i:])
			continue
		}
		tokens = append(tokens, field)
	}
	return tokens
}

func isEdgePunct(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// IsAlnum reports whether s is non-empty and made only of letters and digits.
func IsAlnum(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
