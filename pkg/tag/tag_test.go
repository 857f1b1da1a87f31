package tag

import (
	"errors"
	"testing"
)

type stubTagger struct {
	tokens []Token
	err    error
}

func (s *stubTagger) Tag(text string) ([]Token, error) {
	return s.tokens, s.err
}

func TestHasContentWord(t *testing.T) {
	tests := []struct {
		name   string
		tokens []Token
		want   bool
	}{
		{
			name:   "noun present",
			tokens: []Token{{Text: "Introduction", Tag: "NN"}},
			want:   true,
		},
		{
			name:   "proper noun present",
			tokens: []Token{{Text: "Hamburg", Tag: "NNP"}},
			want:   true,
		},
		{
			name:   "verb present",
			tokens: []Token{{Text: "running", Tag: "VBG"}},
			want:   true,
		},
		{
			name:   "only function words",
			tokens: []Token{{Text: "and", Tag: "CC"}, {Text: "the", Tag: "DT"}},
			want:   false,
		},
		{
			name:   "empty token list",
			tokens: nil,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HasContentWord(&stubTagger{tokens: tt.tokens}, "irrelevant")
			if err != nil {
				t.Fatalf("expected nil error, got %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestHasContentWord_TaggerError(t *testing.T) {
	_, err := HasContentWord(&stubTagger{err: errors.New("tagger down")}, "text")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
