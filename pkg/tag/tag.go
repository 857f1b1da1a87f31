// Package tag provides the part-of-speech tagging capability used by the
// heading classifier.
package tag

// Token is one tagged token of an input span. Tag values follow the Penn
// Treebank convention (NN, NNP, VB, ...).
type Token struct {
	Text string
	Tag  string
}

// Tagger tags short text spans with grammatical categories.
type Tagger interface {
	Tag(text string) ([]Token, error)
}

// HasContentWord reports whether any tagged token is a noun, proper noun,
// or verb. Tagging faults are returned to the caller so it can decide how
// to classify the span without a POS signal.
func HasContentWord(tagger Tagger, text string) (bool, error) {
	tokens, err := tagger.Tag(text)
	if err != nil {
		return false, err
	}
	for _, tok := range tokens {
		if isContentTag(tok.Tag) {
			return true, nil
		}
	}
	return false, nil
}

func isContentTag(t string) bool {
	if len(t) < 2 {
		return false
	}
	switch t[:2] {
	case "NN", "VB":
		return true
	}
	return false
}
