package cmd

import (
	"testing"

	"github.com/manseek/manseek/internal/index"
)

func TestPromoteNameMatches(t *testing.T) {
	results := []index.Result{
		{ID: "gzip (1)", Ordinal: 0, Score: 0.9},
		{ID: "tarcat (1)", Ordinal: 1, Score: 0.8},
		{ID: "tar (1)", Ordinal: 2, Score: 0.7},
		{ID: "cpio (1)", Ordinal: 3, Score: 0.6},
	}
	got := promoteNameMatches("tar", results)
	want := []string{"tar (1)", "tarcat (1)", "gzip (1)", "cpio (1)"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: got %q want %q (full: %v)", i, got[i].ID, id, got)
		}
	}
}

func TestPromoteNameMatches_CaseInsensitive(t *testing.T) {
	results := []index.Result{
		{ID: "ls (1)", Score: 0.5},
		{ID: "Xorg (1)", Score: 0.4},
	}
	got := promoteNameMatches("xorg", results)
	if got[0].ID != "Xorg (1)" {
		t.Fatalf("expected Xorg (1) promoted, got %v", got)
	}
}

func TestPromoteNameMatches_NoMatchesKeepsOrder(t *testing.T) {
	results := []index.Result{
		{ID: "a (1)", Score: 0.3},
		{ID: "b (1)", Score: 0.2},
	}
	got := promoteNameMatches("zzz", results)
	if got[0].ID != "a (1)" || got[1].ID != "b (1)" {
		t.Fatalf("order changed without matches: %v", got)
	}
}

func TestPromoteNameMatches_EmptyQuery(t *testing.T) {
	results := []index.Result{{ID: "a (1)"}}
	got := promoteNameMatches("   ", results)
	if len(got) != 1 || got[0].ID != "a (1)" {
		t.Fatalf("unexpected results: %v", got)
	}
}
