package index

import "fmt"

// Builder accumulates documents for one indexing pass. It assigns each
// document an ordinal (its insertion position) and keeps raw term counts;
// Build turns the accumulated corpus into a Snapshot.
//
// A Builder never touches storage.
type Builder struct {
	tok      *Tokenizer
	ids      []string
	sources  []string
	ordinals map[string]int
	counts   []map[string]int
	lengths  []int
}

// NewBuilder returns an empty Builder that tokenizes documents with tok.
func NewBuilder(tok *Tokenizer) *Builder {
	return &Builder{
		tok:      tok,
		ordinals: make(map[string]int),
	}
}

// Add tokenizes text and records it under id. Submitting the same id
// twice returns ErrDuplicateDocument; the caller must abandon the build.
func (b *Builder) Add(id, text string) error {
	return b.AddSource(id, "", text)
}

// AddSource is Add with a provenance note (typically the first filesystem
// path a manual page was found at) carried into the snapshot registry.
func (b *Builder) AddSource(id, source, text string) error {
	if _, ok := b.ordinals[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateDocument, id)
	}
	tokens := b.tok.Tokenize(text)
	tf := make(map[string]int, len(tokens))
	for _, t := range tokens {
		tf[t]++
	}
	b.ordinals[id] = len(b.ids)
	b.ids = append(b.ids, id)
	b.sources = append(b.sources, source)
	b.counts = append(b.counts, tf)
	b.lengths = append(b.lengths, len(tokens))
	return nil
}

// Len returns the number of documents added so far.
func (b *Builder) Len() int {
	return len(b.ids)
}
