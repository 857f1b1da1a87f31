// Package segment turns a document's styled text spans into an ordered list
// of titled segments. It contains the heading classifier, the structural
// segmenter, and the segment refiner.
package segment

import (
	"strings"
	"unicode"

	"github.com/topograph/topograph/pkg/loader"
	"github.com/topograph/topograph/pkg/tag"
)

const (
	// Font size above which a span counts as visually prominent.
	headingFontThreshold = 12.0

	headingMinChars = 3
	headingMaxChars = 120
)

// IsHeading decides whether a span is heading-like. A span qualifies iff it
// is visually prominent (font size above threshold or bold), its length
// falls into a bounded short range, it is not purely numeric, it contains
// at least one noun, proper noun, or verb, and it is not entirely
// upper-case (running headers and footers tend to be).
//
// A tagging fault classifies the span as not heading-like.
func IsHeading(span loader.Span, tagger tag.Tagger) bool {
	text := strings.TrimSpace(span.Text)

	if span.FontSize <= headingFontThreshold && !span.Bold {
		return false
	}
	if len(text) < headingMinChars || len(text) > headingMaxChars {
		return false
	}
	if isNumericOnly(text) {
		return false
	}
	if isAllUpper(text) {
		return false
	}

	ok, err := tag.HasContentWord(tagger, text)
	if err != nil {
		return false
	}
	return ok
}

// isNumericOnly reports whether the span consists of digits and digit
// punctuation only, e.g. page numbers like "12" or "3.1.4".
func isNumericOnly(text string) bool {
	hasDigit := false
	for _, r := range text {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case r == '.' || r == ',' || r == '-' || r == ' ':
		default:
			return false
		}
	}
	return hasDigit
}

// isAllUpper reports whether every letter in the span is upper-case.
// Spans without letters do not count as upper-case.
func isAllUpper(text string) bool {
	hasLetter := false
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		hasLetter = true
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return hasLetter
}
