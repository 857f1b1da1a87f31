package util

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

func SanitizePostgresText(value string) string {
	if value == "" {
		return value
	}

	sanitized := strings.ToValidUTF8(value, "")
	return strings.ReplaceAll(sanitized, "\x00", "")
}

// TruncateChars returns at most max characters of value, cutting on a rune
// boundary. Used to bound prompt prefixes sent to generation models.
func TruncateChars(value string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max])
}

// TruncateTokens bounds value to maxTokens tokens under the given encoding.
// Falls back to a character cut if the encoding cannot be loaded.
func TruncateTokens(value string, encoder string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	enc, err := tiktoken.GetEncoding(encoder)
	if err != nil {
		return TruncateChars(value, maxTokens*4)
	}
	tokens := enc.Encode(value, nil, nil)
	if len(tokens) <= maxTokens {
		return value
	}
	return enc.Decode(tokens[:maxTokens])
}
