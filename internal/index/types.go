package index

// Manifest describes a persisted index snapshot and how to interpret it.
type Manifest struct {
	IndexVersion int      `json:"index_version"`
	CreatedAt    string   `json:"created_at"`
	Scheme       string   `json:"scheme"`
	StopWords    []string `json:"stop_words,omitempty"`
	DocCount     int      `json:"doc_count"`
	TermCount    int      `json:"term_count"`
	DocsFile     string   `json:"docs_file"`
	VocabFile    string   `json:"vocab_file"`
	VectorFile   string   `json:"vector_file"`
}

// DocEntry is one document row in docs.jsonl. The line number is the
// document's ordinal.
type DocEntry struct {
	ID     string `json:"id"`
	Source string `json:"source,omitempty"`
	Length int    `json:"length"`
}

// TermEntry is one vocabulary row in vocab.jsonl. The line number is the
// term's vector-space position.
type TermEntry struct {
	Term string  `json:"term"`
	DF   int     `json:"df"`
	IDF  float64 `json:"idf"`
}

// SparseVector maps vocabulary positions to TF-IDF weights. Positions
// with zero weight are never stored.
type SparseVector map[int]float64

// Snapshot is one immutable indexing result: document registry,
// vocabulary, IDF table and per-document weight vectors. It is built
// once (Builder.Build) or loaded once (Load) and then only read, so
// concurrent queries may share it freely.
type Snapshot struct {
	Manifest Manifest
	Docs     []DocEntry
	Vocab    []TermEntry
	Vectors  []SparseVector

	tok       *Tokenizer
	positions map[string]int
	norms     []float64
}

// finish derives the lookup structures a freshly built or loaded
// snapshot needs for querying.
func (s *Snapshot) finish() {
	s.tok = NewTokenizer(s.Manifest.StopWords)
	s.positions = make(map[string]int, len(s.Vocab))
	for i, te := range s.Vocab {
		s.positions[te.Term] = i
	}
	s.norms = make([]float64, len(s.Vectors))
	for i, v := range s.Vectors {
		s.norms[i] = v.norm()
	}
}
