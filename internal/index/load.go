package index

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
)

// Load reads a snapshot from dir and validates its structure. Every
// validation failure wraps ErrCorruptIndex; Load never attempts partial
// recovery and never recomputes weights.
func Load(dir string) (*Snapshot, error) {
	manifestPath := filepath.Join(dir, manifestFile)
	b, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read manifest %s: %w", manifestPath, err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("%w: invalid manifest JSON %s: %v", ErrCorruptIndex, manifestPath, err)
	}
	if m.IndexVersion != indexVersion {
		return nil, fmt.Errorf("%w: unsupported index version %d", ErrCorruptIndex, m.IndexVersion)
	}
	if !Scheme(m.Scheme).Valid() {
		return nil, fmt.Errorf("%w: unknown weighting scheme %q", ErrCorruptIndex, m.Scheme)
	}
	if m.DocCount <= 0 {
		return nil, fmt.Errorf("%w: invalid doc count %d", ErrCorruptIndex, m.DocCount)
	}
	if m.TermCount < 0 {
		return nil, fmt.Errorf("%w: invalid term count %d", ErrCorruptIndex, m.TermCount)
	}
	if m.DocsFile == "" || m.VocabFile == "" || m.VectorFile == "" {
		return nil, fmt.Errorf("%w: manifest is missing file names", ErrCorruptIndex)
	}

	docs, err := loadDocs(filepath.Join(dir, m.DocsFile), m.DocCount)
	if err != nil {
		return nil, err
	}
	vocab, err := loadVocab(filepath.Join(dir, m.VocabFile), m.TermCount)
	if err != nil {
		return nil, err
	}
	vectors, err := loadVectors(filepath.Join(dir, m.VectorFile), m.DocCount, m.TermCount)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Manifest: m, Docs: docs, Vocab: vocab, Vectors: vectors}
	snap.finish()
	return snap, nil
}

func loadDocs(path string, want int) ([]DocEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open docs file %s: %v", ErrCorruptIndex, path, err)
	}
	defer f.Close()

	seen := make(map[string]struct{}, want)
	var out []DocEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e DocEntry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("%w: invalid docs JSONL %s: %v", ErrCorruptIndex, path, err)
		}
		if e.ID == "" {
			return nil, fmt.Errorf("%w: document at ordinal %d has empty id", ErrCorruptIndex, len(out))
		}
		if _, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("%w: document id %q appears twice in registry", ErrCorruptIndex, e.ID)
		}
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read docs file %s: %w", path, err)
	}
	if len(out) != want {
		return nil, fmt.Errorf("%w: registry has %d documents, manifest says %d", ErrCorruptIndex, len(out), want)
	}
	return out, nil
}

func loadVocab(path string, want int) ([]TermEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open vocab file %s: %v", ErrCorruptIndex, path, err)
	}
	defer f.Close()

	seen := make(map[string]struct{}, want)
	var out []TermEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e TermEntry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("%w: invalid vocab JSONL %s: %v", ErrCorruptIndex, path, err)
		}
		if e.Term == "" {
			return nil, fmt.Errorf("%w: vocabulary position %d has empty term", ErrCorruptIndex, len(out))
		}
		if _, dup := seen[e.Term]; dup {
			return nil, fmt.Errorf("%w: term %q appears twice in vocabulary", ErrCorruptIndex, e.Term)
		}
		seen[e.Term] = struct{}{}
		if e.DF < 1 {
			return nil, fmt.Errorf("%w: term %q has document frequency %d", ErrCorruptIndex, e.Term, e.DF)
		}
		if math.IsNaN(e.IDF) || math.IsInf(e.IDF, 0) || e.IDF < 0 {
			return nil, fmt.Errorf("%w: term %q has invalid idf %v", ErrCorruptIndex, e.Term, e.IDF)
		}
		out = append(out, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read vocab file %s: %w", path, err)
	}
	if len(out) != want {
		return nil, fmt.Errorf("%w: vocabulary has %d terms, manifest says %d", ErrCorruptIndex, len(out), want)
	}
	return out, nil
}

// loadVectors reads docCount sparse vectors and checks each entry against
// the stored vocabulary: positions must be strictly increasing and below
// termCount, weights finite and positive, with no trailing bytes.
func loadVectors(path string, docCount, termCount int) ([]SparseVector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open vector file %s: %v", ErrCorruptIndex, path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	out := make([]SparseVector, docCount)
	for ord := 0; ord < docCount; ord++ {
		var count uint32
		if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
			return nil, fmt.Errorf("%w: vector file truncated at document %d: %v", ErrCorruptIndex, ord, err)
		}
		if int(count) > termCount {
			return nil, fmt.Errorf("%w: document %d has %d entries for a %d-term vocabulary", ErrCorruptIndex, ord, count, termCount)
		}
		vec := make(SparseVector, count)
		prev := -1
		for i := 0; i < int(count); i++ {
			var pos uint32
			var weight float64
			if err := binary.Read(r, binary.LittleEndian, &pos); err != nil {
				return nil, fmt.Errorf("%w: vector file truncated at document %d: %v", ErrCorruptIndex, ord, err)
			}
			if err := binary.Read(r, binary.LittleEndian, &weight); err != nil {
				return nil, fmt.Errorf("%w: vector file truncated at document %d: %v", ErrCorruptIndex, ord, err)
			}
			if int(pos) >= termCount {
				return nil, fmt.Errorf("%w: document %d references vocabulary position %d of %d", ErrCorruptIndex, ord, pos, termCount)
			}
			if int(pos) <= prev {
				return nil, fmt.Errorf("%w: document %d has out-of-order vector entries", ErrCorruptIndex, ord)
			}
			if math.IsNaN(weight) || math.IsInf(weight, 0) || weight <= 0 {
				return nil, fmt.Errorf("%w: document %d has invalid weight %v at position %d", ErrCorruptIndex, ord, weight, pos)
			}
			prev = int(pos)
			vec[int(pos)] = weight
		}
		out[ord] = vec
	}
	if _, err := r.ReadByte(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing bytes in vector file %s", ErrCorruptIndex, path)
	}
	return out, nil
}
