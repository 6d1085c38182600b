package index

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const (
	indexVersion = 1

	manifestFile      = "index_manifest.json"
	defaultDocsFile   = "docs.jsonl"
	defaultVocabFile  = "vocab.jsonl"
	defaultVectorFile = "vectors.bin"
)

// Write persists snap into dir: a JSON manifest, one JSONL row per
// document and per vocabulary term, and a binary file of sparse weight
// vectors. Write never recomputes anything; pair it with AtomicSwap so a
// failed write can't leave a half-installed index behind.
func Write(dir string, snap *Snapshot) error {
	m := snap.Manifest
	if m.DocCount != len(snap.Docs) || len(snap.Docs) == 0 {
		return fmt.Errorf("doc count mismatch: manifest %d, registry %d", m.DocCount, len(snap.Docs))
	}
	if m.TermCount != len(snap.Vocab) {
		return fmt.Errorf("term count mismatch: manifest %d, vocabulary %d", m.TermCount, len(snap.Vocab))
	}
	if len(snap.Vectors) != len(snap.Docs) {
		return fmt.Errorf("vector count mismatch: %d vectors for %d documents", len(snap.Vectors), len(snap.Docs))
	}
	if m.CreatedAt == "" {
		m.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create index dir %s: %w", dir, err)
	}

	mb, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, manifestFile), mb, 0o644); err != nil {
		return fmt.Errorf("cannot write manifest: %w", err)
	}

	if err := writeJSONL(filepath.Join(dir, m.DocsFile), len(snap.Docs), func(i int) any { return snap.Docs[i] }); err != nil {
		return err
	}
	if err := writeJSONL(filepath.Join(dir, m.VocabFile), len(snap.Vocab), func(i int) any { return snap.Vocab[i] }); err != nil {
		return err
	}
	return writeVectors(filepath.Join(dir, m.VectorFile), snap.Vectors)
}

func writeJSONL(path string, n int, row func(i int) any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", path, err)
	}
	bw := bufio.NewWriter(f)
	for i := 0; i < n; i++ {
		line, err := json.Marshal(row(i))
		if err != nil {
			_ = f.Close()
			return err
		}
		if _, err := bw.Write(line); err != nil {
			_ = f.Close()
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			_ = f.Close()
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// writeVectors encodes each document's sparse vector as a uint32 entry
// count followed by (uint32 position, float64 weight) pairs in ascending
// position order, little endian.
func writeVectors(path string, vectors []SparseVector) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create vector file %s: %w", path, err)
	}
	bw := bufio.NewWriter(f)
	for _, vec := range vectors {
		positions := make([]int, 0, len(vec))
		for pos := range vec {
			positions = append(positions, pos)
		}
		sort.Ints(positions)
		if err := binary.Write(bw, binary.LittleEndian, uint32(len(positions))); err != nil {
			_ = f.Close()
			return fmt.Errorf("cannot write vectors: %w", err)
		}
		for _, pos := range positions {
			if err := binary.Write(bw, binary.LittleEndian, uint32(pos)); err != nil {
				_ = f.Close()
				return fmt.Errorf("cannot write vectors: %w", err)
			}
			if err := binary.Write(bw, binary.LittleEndian, vec[pos]); err != nil {
				_ = f.Close()
				return fmt.Errorf("cannot write vectors: %w", err)
			}
		}
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// AtomicSwap replaces destDir with srcDir by renaming, keeping a .bak
// copy of the previous index for rollback if the rename fails.
func AtomicSwap(srcDir, destDir string) error {
	parent := filepath.Dir(destDir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return err
	}
	backup := destDir + ".bak"
	_ = os.RemoveAll(backup)
	if _, err := os.Stat(destDir); err == nil {
		if err := os.Rename(destDir, backup); err != nil {
			return err
		}
	}
	if err := os.Rename(srcDir, destDir); err != nil {
		// rollback best-effort
		if _, stErr := os.Stat(backup); stErr == nil {
			_ = os.Rename(backup, destDir)
		}
		return err
	}
	_ = os.RemoveAll(backup)
	return nil
}
