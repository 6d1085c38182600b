package index

import (
	"reflect"
	"testing"
)

func TestTokenize_NormalizesAndSplits(t *testing.T) {
	tok := NewTokenizer(nil)
	got := tok.Tokenize("GNU 'tar' saves  many\tfiles... (together)")
	want := []string{"gnu", "tar", "saves", "many", "files", "together"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected tokens: %v", got)
	}
}

func TestTokenize_Deterministic(t *testing.T) {
	tok := NewTokenizer([]string{"the"})
	text := "The quick-brown fox, the lazy dog."
	a := tok.Tokenize(text)
	b := tok.Tokenize(text)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("tokenizing twice diverged: %v vs %v", a, b)
	}
}

func TestTokenize_StopWords(t *testing.T) {
	tok := NewTokenizer([]string{"THE", " a ", "", "the"})
	got := tok.Tokenize("the cat and a dog")
	want := []string{"cat", "and", "dog"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected tokens: %v", got)
	}
	if sw := tok.StopWords(); !reflect.DeepEqual(sw, []string{"a", "the"}) {
		t.Fatalf("unexpected stop words: %v", sw)
	}
}

func TestTokenize_EmptyAndPunctuationOnly(t *testing.T) {
	tok := NewTokenizer(nil)
	if got := tok.Tokenize(""); len(got) != 0 {
		t.Fatalf("expected no tokens, got %v", got)
	}
	if got := tok.Tokenize("--- ... !!!"); len(got) != 0 {
		t.Fatalf("expected no tokens, got %v", got)
	}
}

func TestTokenize_CaseFolding(t *testing.T) {
	tok := NewTokenizer(nil)
	a := tok.Tokenize("STRASSE Straße")
	if len(a) != 2 || a[0] != a[1] {
		t.Fatalf("case folding did not unify variants: %v", a)
	}
}
