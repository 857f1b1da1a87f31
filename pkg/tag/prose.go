package tag

import (
	"github.com/jdkato/prose/v2"
)

// ProseTagger implements Tagger with the prose NLP library. The zero value
// is ready to use; a single instance is safe for concurrent use because
// each Tag call builds its own document.
type ProseTagger struct{}

// NewProseTagger creates a prose-backed part-of-speech tagger.
func NewProseTagger() *ProseTagger {
	return &ProseTagger{}
}

// Tag tokenizes and POS-tags the given text. Sentence segmentation and
// entity extraction are disabled, spans handed to the classifier are short.
func (p *ProseTagger) Tag(text string) ([]Token, error) {
	doc, err := prose.NewDocument(
		text,
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, err
	}

	proseTokens := doc.Tokens()
	tokens := make([]Token, 0, len(proseTokens))
	for _, tok := range proseTokens {
		tokens = append(tokens, Token{Text: tok.Text, Tag: tok.Tag})
	}
	return tokens, nil
}
