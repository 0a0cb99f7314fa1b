package preview

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestExcerptShortTextIsFlattened(t *testing.T) {
	e := NewExcerpter(2, 200)
	got := e.Excerpt("  First line\n\n  second   line.  ")
	if got != "First line second line." {
		t.Fatalf("unexpected excerpt: %q", got)
	}
}

func TestExcerptEmpty(t *testing.T) {
	if got := NewExcerpter(1, 50).Excerpt(" \n\t "); got != "" {
		t.Fatalf("expected empty excerpt, got %q", got)
	}
}

func TestExcerptPicksRepresentativeSentence(t *testing.T) {
	text := "Gophers dig tunnels. Weather was fine. Gophers love tunnels and gophers share tunnels. Lunch happened."
	got := NewExcerpter(1, 200).Excerpt(text)
	if !strings.Contains(got, "Gophers love tunnels") {
		t.Fatalf("expected the gopher-heavy sentence, got %q", got)
	}
}

func TestExcerptKeepsOriginalOrder(t *testing.T) {
	text := "Alpha beta gamma. Unrelated filler here. Gamma beta alpha again."
	got := NewExcerpter(2, 200).Excerpt(text)
	if got != "Alpha beta gamma. Gamma beta alpha again." {
		t.Fatalf("unexpected excerpt: %q", got)
	}
}

func TestExcerptClips(t *testing.T) {
	got := NewExcerpter(1, 10).Excerpt(strings.Repeat("word ", 20))
	if utf8.RuneCountInString(got) > 10 || !strings.HasSuffix(got, "…") {
		t.Fatalf("expected clipped excerpt, got %q", got)
	}
}
