// Package text implements loader.DocumentSource for plain-text input.
// The whole document becomes a single synthetic page of unstyled spans,
// so downstream segmentation takes the no-heading fallback path.
package text

import (
	"context"
	"strings"

	"github.com/topograph/topograph/pkg/loader"
)

// Source wraps raw text as a one-page document.
type Source struct {
	content string
}

// NewSource creates a plain-text document source.
func NewSource(content string) *Source {
	return &Source{content: content}
}

// Pages returns one page with one block per non-empty line. Spans carry no
// font signal.
func (s *Source) Pages(ctx context.Context) ([]loader.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var blocks []loader.Block
	for _, line := range strings.Split(s.content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		blocks = append(blocks, loader.Block{
			Spans: []loader.Span{{Text: line}},
		})
	}

	return []loader.Page{{Number: 1, Blocks: blocks}}, nil
}

// Close is a no-op for in-memory sources.
func (s *Source) Close() error {
	return nil
}
