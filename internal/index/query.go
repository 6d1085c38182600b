package index

import "sort"

// Result is one ranked document.
type Result struct {
	ID      string
	Ordinal int
	Score   float64
}

// Search ranks every document in the snapshot against a free-text query
// by cosine similarity.
//
// The query is tokenized with the snapshot's build-time tokenizer and
// projected with the snapshot's own IDF table and weighting scheme; terms
// unseen during the build simply contribute nothing. An empty query, or a
// corpus whose vectors are all zero (single-document build), produces all
// zero scores rather than an error.
//
// Ordering is score descending, ties broken by ordinal ascending. When
// limit > 0 at most limit results are returned; otherwise zero-score
// documents are dropped unless every score is zero, in which case all
// documents come back in ordinal order and the caller decides how to
// render them.
func (s *Snapshot) Search(query string, limit int) []Result {
	qv := s.queryVector(query)
	qnorm := qv.norm()

	results := make([]Result, len(s.Docs))
	anyNonzero := false
	for ord, doc := range s.Docs {
		score := cosine(qv, s.Vectors[ord], qnorm, s.norms[ord])
		if score != 0 {
			anyNonzero = true
		}
		results[ord] = Result{ID: doc.ID, Ordinal: ord, Score: score}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Ordinal < results[j].Ordinal
	})

	if limit > 0 {
		if len(results) > limit {
			results = results[:limit]
		}
		return results
	}
	if !anyNonzero {
		return results
	}
	cut := len(results)
	for cut > 0 && results[cut-1].Score == 0 {
		cut--
	}
	return results[:cut]
}

// queryVector projects query text into the snapshot's vector space.
func (s *Snapshot) queryVector(query string) SparseVector {
	scheme := Scheme(s.Manifest.Scheme)
	tf := make(map[int]int)
	for _, term := range s.tok.Tokenize(query) {
		if pos, ok := s.positions[term]; ok {
			tf[pos]++
		}
	}
	vec := make(SparseVector, len(tf))
	for pos, count := range tf {
		if w := scheme.weight(count) * s.Vocab[pos].IDF; w != 0 {
			vec[pos] = w
		}
	}
	return vec
}
