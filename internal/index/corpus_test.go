package index

import (
	"errors"
	"testing"
)

func TestBuilder_AddAssignsOrdinalsInInsertionOrder(t *testing.T) {
	b := NewBuilder(NewTokenizer(nil))
	for _, id := range []string{"tar (1)", "gzip (1)", "ls (1)"} {
		if err := b.Add(id, "some text"); err != nil {
			t.Fatalf("Add(%s): %v", id, err)
		}
	}
	if b.Len() != 3 {
		t.Fatalf("expected 3 documents, got %d", b.Len())
	}
	snap, err := b.Build(SchemeLog)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := []string{"tar (1)", "gzip (1)", "ls (1)"}
	for i, id := range want {
		if snap.Docs[i].ID != id {
			t.Fatalf("ordinal %d: got %q want %q", i, snap.Docs[i].ID, id)
		}
	}
}

func TestBuilder_DuplicateIDFails(t *testing.T) {
	b := NewBuilder(NewTokenizer(nil))
	if err := b.Add("foo(1)", "first"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	err := b.Add("foo(1)", "second")
	if !errors.Is(err, ErrDuplicateDocument) {
		t.Fatalf("expected ErrDuplicateDocument, got %v", err)
	}
}

func TestBuilder_EmptyCorpusFailsBuild(t *testing.T) {
	b := NewBuilder(NewTokenizer(nil))
	if _, err := b.Build(SchemeLog); err == nil {
		t.Fatalf("expected error building empty corpus")
	}
}

func TestBuilder_UnknownSchemeFails(t *testing.T) {
	b := NewBuilder(NewTokenizer(nil))
	if err := b.Add("a (1)", "text"); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Build(Scheme("tf-idf-squared")); err == nil {
		t.Fatalf("expected error for unknown scheme")
	}
}
