package index

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Scheme selects the term-frequency weighting function. The scheme is
// recorded in the snapshot manifest so the query side always weights the
// way the build did.
type Scheme string

const (
	// SchemeRaw weights a term by its raw occurrence count.
	SchemeRaw Scheme = "raw"
	// SchemeLog weights a term by 1 + ln(count), damping long pages.
	// This is the default.
	SchemeLog Scheme = "log"
)

// Valid reports whether s names a known weighting scheme.
func (s Scheme) Valid() bool {
	return s == SchemeRaw || s == SchemeLog
}

// weight maps a raw in-document occurrence count to a TF weight.
func (s Scheme) weight(count int) float64 {
	if count <= 0 {
		return 0
	}
	if s == SchemeRaw {
		return float64(count)
	}
	return 1 + math.Log(float64(count))
}

// Build computes the TF-IDF model over everything added so far and
// returns it as an immutable Snapshot.
//
// Vocabulary positions are the lexicographic rank of each distinct term,
// stable within the snapshot. IDF is ln(N/df), so it is 0 exactly when a
// term occurs in every document; with a single-document corpus every
// weight collapses to 0 and the snapshot stores empty vectors, which is a
// defined degenerate state rather than an error.
func (b *Builder) Build(scheme Scheme) (*Snapshot, error) {
	if !scheme.Valid() {
		return nil, fmt.Errorf("unknown weighting scheme %q", scheme)
	}
	n := len(b.ids)
	if n == 0 {
		return nil, fmt.Errorf("empty corpus: no documents to index")
	}

	df := make(map[string]int)
	for _, tf := range b.counts {
		for term := range tf {
			df[term]++
		}
	}
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	vocab := make([]TermEntry, len(terms))
	positions := make(map[string]int, len(terms))
	for i, term := range terms {
		vocab[i] = TermEntry{
			Term: term,
			DF:   df[term],
			IDF:  math.Log(float64(n) / float64(df[term])),
		}
		positions[term] = i
	}

	docs := make([]DocEntry, n)
	vectors := make([]SparseVector, n)
	for ord := 0; ord < n; ord++ {
		docs[ord] = DocEntry{
			ID:     b.ids[ord],
			Source: b.sources[ord],
			Length: b.lengths[ord],
		}
		vec := make(SparseVector)
		for term, count := range b.counts[ord] {
			pos := positions[term]
			if w := scheme.weight(count) * vocab[pos].IDF; w != 0 {
				vec[pos] = w
			}
		}
		vectors[ord] = vec
	}

	snap := &Snapshot{
		Manifest: Manifest{
			IndexVersion: indexVersion,
			CreatedAt:    time.Now().UTC().Format(time.RFC3339),
			Scheme:       string(scheme),
			StopWords:    b.tok.StopWords(),
			DocCount:     n,
			TermCount:    len(vocab),
			DocsFile:     defaultDocsFile,
			VocabFile:    defaultVocabFile,
			VectorFile:   defaultVectorFile,
		},
		Docs:    docs,
		Vocab:   vocab,
		Vectors: vectors,
	}
	snap.finish()
	return snap, nil
}
