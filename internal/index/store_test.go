package index

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeSnapshot(t *testing.T, snap *Snapshot) string {
	t.Helper()
	dir := t.TempDir()
	if err := Write(dir, snap); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return dir
}

func TestWriteLoad_RoundTrip(t *testing.T) {
	b := NewBuilder(NewTokenizer([]string{"the"}))
	docs := [][2]string{
		{"tar (1)", "the tar archiving utility stores and extracts files"},
		{"gzip (1)", "compress or expand files"},
		{"ls (1)", "list directory contents and files"},
	}
	for _, d := range docs {
		if err := b.AddSource(d[0], "/usr/share/man/man1/"+d[0], d[1]); err != nil {
			t.Fatal(err)
		}
	}
	snap, err := b.Build(SchemeLog)
	if err != nil {
		t.Fatal(err)
	}

	dir := writeSnapshot(t, snap)
	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !reflect.DeepEqual(loaded.Manifest, snap.Manifest) {
		t.Fatalf("manifest changed across round trip:\n got %+v\nwant %+v", loaded.Manifest, snap.Manifest)
	}
	if !reflect.DeepEqual(loaded.Docs, snap.Docs) {
		t.Fatalf("registry changed across round trip")
	}
	if !reflect.DeepEqual(loaded.Vocab, snap.Vocab) {
		t.Fatalf("vocabulary changed across round trip")
	}
	if len(loaded.Vectors) != len(snap.Vectors) {
		t.Fatalf("vector count changed: got %d want %d", len(loaded.Vectors), len(snap.Vectors))
	}
	for ord := range snap.Vectors {
		if len(loaded.Vectors[ord]) != len(snap.Vectors[ord]) {
			t.Fatalf("document %d vector entry count changed", ord)
		}
		for pos, w := range snap.Vectors[ord] {
			got, ok := loaded.Vectors[ord][pos]
			if !ok || math.Abs(got-w) > 1e-15 {
				t.Fatalf("document %d position %d: got %v want %v", ord, pos, got, w)
			}
		}
	}

	// A loaded snapshot must rank identically to the freshly built one.
	want := snap.Search("compress files", 0)
	got := loaded.Search("compress files", 0)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("search results changed across round trip:\n got %+v\nwant %+v", got, want)
	}
}

func TestLoad_MissingManifest(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Fatalf("expected error loading empty dir")
	}
}

func TestLoad_InvalidManifestJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, manifestFile), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(dir)
	if !errors.Is(err, ErrCorruptIndex) {
		t.Fatalf("expected ErrCorruptIndex, got %v", err)
	}
}

func TestLoad_DocCountMismatch(t *testing.T) {
	snap := buildSnapshot(t, SchemeLog, [][2]string{
		{"a", "dog"},
		{"b", "cat"},
	})
	dir := writeSnapshot(t, snap)

	// Claim one more document than the registry holds.
	var m Manifest
	b, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatal(err)
	}
	m.DocCount++
	mb, _ := json.Marshal(m)
	if err := os.WriteFile(filepath.Join(dir, manifestFile), mb, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err = Load(dir)
	if !errors.Is(err, ErrCorruptIndex) {
		t.Fatalf("expected ErrCorruptIndex, got %v", err)
	}
}

func TestLoad_VectorPositionBeyondVocabulary(t *testing.T) {
	snap := buildSnapshot(t, SchemeLog, [][2]string{
		{"a", "dog"},
		{"b", "cat"},
	})
	dir := writeSnapshot(t, snap)

	// One entry pointing past the stored vocabulary.
	f, err := os.Create(filepath.Join(dir, snap.Manifest.VectorFile))
	if err != nil {
		t.Fatal(err)
	}
	for ord := 0; ord < 2; ord++ {
		if err := binary.Write(f, binary.LittleEndian, uint32(1)); err != nil {
			t.Fatal(err)
		}
		if err := binary.Write(f, binary.LittleEndian, uint32(snap.Manifest.TermCount+3)); err != nil {
			t.Fatal(err)
		}
		if err := binary.Write(f, binary.LittleEndian, float64(0.5)); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	_, err = Load(dir)
	if !errors.Is(err, ErrCorruptIndex) {
		t.Fatalf("expected ErrCorruptIndex, got %v", err)
	}
}

func TestLoad_TruncatedVectorFile(t *testing.T) {
	snap := buildSnapshot(t, SchemeLog, [][2]string{
		{"a", "dog bone"},
		{"b", "cat"},
	})
	dir := writeSnapshot(t, snap)

	path := filepath.Join(dir, snap.Manifest.VectorFile)
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, b[:len(b)-3], 0o644); err != nil {
		t.Fatal(err)
	}

	_, err = Load(dir)
	if !errors.Is(err, ErrCorruptIndex) {
		t.Fatalf("expected ErrCorruptIndex, got %v", err)
	}
}

func TestLoad_TrailingBytesInVectorFile(t *testing.T) {
	snap := buildSnapshot(t, SchemeLog, [][2]string{
		{"a", "dog"},
		{"b", "cat"},
	})
	dir := writeSnapshot(t, snap)

	path := filepath.Join(dir, snap.Manifest.VectorFile)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write([]byte{0xde, 0xad}); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	_, err = Load(dir)
	if !errors.Is(err, ErrCorruptIndex) {
		t.Fatalf("expected ErrCorruptIndex, got %v", err)
	}
}

func TestLoad_DuplicateDocID(t *testing.T) {
	snap := buildSnapshot(t, SchemeLog, [][2]string{
		{"a", "dog"},
		{"b", "cat"},
	})
	dir := writeSnapshot(t, snap)

	rows := []byte(`{"id":"a","length":1}` + "\n" + `{"id":"a","length":1}` + "\n")
	if err := os.WriteFile(filepath.Join(dir, snap.Manifest.DocsFile), rows, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(dir)
	if !errors.Is(err, ErrCorruptIndex) {
		t.Fatalf("expected ErrCorruptIndex, got %v", err)
	}
}

func TestAtomicSwap_InstallsAndReplaces(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "new")
	dest := filepath.Join(base, "index")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "marker"), []byte("v2"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dest, "marker"), []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := AtomicSwap(src, dest); err != nil {
		t.Fatalf("AtomicSwap: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dest, "marker"))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "v2" {
		t.Fatalf("expected new index installed, got %q", string(b))
	}
	if _, err := os.Stat(dest + ".bak"); !os.IsNotExist(err) {
		t.Fatalf("backup dir left behind")
	}
}

func TestAtomicSwap_MissingSourceKeepsOldIndex(t *testing.T) {
	base := t.TempDir()
	dest := filepath.Join(base, "index")
	if err := os.MkdirAll(dest, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dest, "marker"), []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := AtomicSwap(filepath.Join(base, "does-not-exist"), dest); err == nil {
		t.Fatalf("expected error for missing source")
	}
	b, err := os.ReadFile(filepath.Join(dest, "marker"))
	if err != nil {
		t.Fatalf("old index lost: %v", err)
	}
	if string(b) != "v1" {
		t.Fatalf("old index content changed: %q", string(b))
	}
}
