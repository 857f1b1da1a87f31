package segment

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/topograph/topograph/pkg/common"
)

type stubNamer struct {
	name      string
	err       error
	fragments []string
}

func (s *stubNamer) GenerateName(ctx context.Context, fragment string) (string, error) {
	s.fragments = append(s.fragments, fragment)
	return s.name, s.err
}

func longBody(seed string) string {
	return seed + " " + strings.Repeat("filler text ", 10)
}

func TestRefineDropsShortSegments(t *testing.T) {
	segments := []common.Segment{
		{Title: "Good Section", BodyText: longBody("keep me"), StartPage: 1, EndPage: 1},
		{Title: "Tiny Section", BodyText: "too short", StartPage: 2, EndPage: 2},
	}

	got := NewRefiner(&stubNamer{}).Refine(context.Background(), segments)

	if len(got) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(got))
	}
	if got[0].Title != "Good Section" {
		t.Errorf("Title = %q, want %q", got[0].Title, "Good Section")
	}
}

func TestRefineDropsDuplicates(t *testing.T) {
	body := longBody("identical opening")
	segments := []common.Segment{
		{Title: "First Copy", BodyText: body, StartPage: 1, EndPage: 1},
		{Title: "Second Copy", BodyText: body + " with a different tail far past the prefix", StartPage: 2, EndPage: 2},
	}

	got := NewRefiner(&stubNamer{}).Refine(context.Background(), segments)

	if len(got) != 1 {
		t.Fatalf("expected 1 segment after dedup, got %d", len(got))
	}
	if got[0].Title != "First Copy" {
		t.Errorf("kept %q, want the earlier segment", got[0].Title)
	}
}

func TestRefineRegeneratesBadTitles(t *testing.T) {
	tests := []struct {
		name  string
		title string
	}{
		{"placeholder", fallbackTitle},
		{"too many words", "a very long and winding title that keeps going on forever"},
		{"all caps", "SECTION HEADER"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			namer := &stubNamer{name: "Generated Title"}
			segments := []common.Segment{
				{Title: tt.title, BodyText: longBody("content"), StartPage: 1, EndPage: 1},
			}

			got := NewRefiner(namer).Refine(context.Background(), segments)

			if len(got) != 1 {
				t.Fatalf("expected 1 segment, got %d", len(got))
			}
			if got[0].Title != "Generated Title" {
				t.Errorf("Title = %q, want regenerated title", got[0].Title)
			}
			if len(namer.fragments) != 1 {
				t.Fatalf("expected 1 naming call, got %d", len(namer.fragments))
			}
			if len(namer.fragments[0]) > refinerNamePrefixChars {
				t.Errorf("fragment length %d exceeds bound %d", len(namer.fragments[0]), refinerNamePrefixChars)
			}
		})
	}
}

func TestRefineKeepsGoodTitles(t *testing.T) {
	namer := &stubNamer{name: "Should Not Appear"}
	segments := []common.Segment{
		{Title: "Graph Storage Layout", BodyText: longBody("content"), StartPage: 1, EndPage: 1},
	}

	got := NewRefiner(namer).Refine(context.Background(), segments)

	if got[0].Title != "Graph Storage Layout" {
		t.Errorf("Title = %q, want original title kept", got[0].Title)
	}
	if len(namer.fragments) != 0 {
		t.Errorf("namer called %d times, want 0", len(namer.fragments))
	}
}

func TestRefineNamerFailureFallback(t *testing.T) {
	namer := &stubNamer{err: errors.New("model unavailable")}
	segments := []common.Segment{
		{Title: "", BodyText: longBody("content"), StartPage: 1, EndPage: 1},
	}

	got := NewRefiner(namer).Refine(context.Background(), segments)

	if got[0].Title != "Section 1" {
		t.Errorf("Title = %q, want %q", got[0].Title, "Section 1")
	}
}

func TestRefineFabricatesWholeDocumentSegment(t *testing.T) {
	// Every segment is below the size floor, but together they hold text.
	segments := []common.Segment{
		{Title: "Fragment One", BodyText: "short one", StartPage: 1, EndPage: 1},
		{Title: "Fragment Two", BodyText: "short two", StartPage: 2, EndPage: 2},
	}

	namer := &stubNamer{name: "Merged Document"}
	got := NewRefiner(namer).Refine(context.Background(), segments)

	if len(got) != 1 {
		t.Fatalf("expected 1 fabricated segment, got %d", len(got))
	}
	if got[0].Title != "Merged Document" {
		t.Errorf("Title = %q, want %q", got[0].Title, "Merged Document")
	}
	if got[0].BodyText != "short one\nshort two" {
		t.Errorf("BodyText = %q", got[0].BodyText)
	}
	if got[0].StartPage != 1 || got[0].EndPage != 2 {
		t.Errorf("pages = %d..%d, want 1..2", got[0].StartPage, got[0].EndPage)
	}
}

func TestRefineEmptyInput(t *testing.T) {
	got := NewRefiner(&stubNamer{}).Refine(context.Background(), nil)
	if len(got) != 0 {
		t.Errorf("expected no segments, got %+v", got)
	}
}
