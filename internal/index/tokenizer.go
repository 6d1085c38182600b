package index

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// Tokenizer normalizes raw text into index terms: Unicode case folding,
// splitting on any rune that is neither letter nor digit, and dropping
// empty tokens and configured stop words.
//
// Documents and queries must go through the same Tokenizer configuration,
// otherwise query vectors stop corresponding to document vectors. The
// stop-word set is therefore persisted in the index manifest and restored
// on load.
type Tokenizer struct {
	stop  map[string]struct{}
	words []string
}

// NewTokenizer returns a Tokenizer with the given stop-word set.
// Stop words are case-folded; empty entries are ignored.
func NewTokenizer(stopWords []string) *Tokenizer {
	t := &Tokenizer{stop: make(map[string]struct{}, len(stopWords))}
	fold := cases.Fold()
	for _, w := range stopWords {
		w = fold.String(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, ok := t.stop[w]; ok {
			continue
		}
		t.stop[w] = struct{}{}
		t.words = append(t.words, w)
	}
	sort.Strings(t.words)
	return t
}

// StopWords returns the normalized stop-word set in sorted order.
func (t *Tokenizer) StopWords() []string {
	out := make([]string, len(t.words))
	copy(out, t.words)
	return out
}

// Tokenize splits text into normalized terms. Tokenizing the same text
// twice yields identical results.
func (t *Tokenizer) Tokenize(text string) []string {
	folded := cases.Fold().String(text)
	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if _, skip := t.stop[f]; skip {
			continue
		}
		out = append(out, f)
	}
	return out
}
