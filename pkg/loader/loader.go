// Package loader defines the document extraction capability consumed by the
// segmentation pipeline. A DocumentSource yields pages of blocks of text
// spans annotated with font signals, plus any images found per page.
package loader

import (
	"context"
	"strings"
)

// Span is one styled run of text within a block.
type Span struct {
	Text     string
	FontSize float64
	Bold     bool
}

// Block is a visually contiguous group of spans, usually one line or
// paragraph fragment of the source document.
type Block struct {
	Spans []Span
}

// ImageRef references one image extracted from a page. Data holds the raw
// embedded stream bytes and may be nil when only metadata is available.
type ImageRef struct {
	Name string
	Data []byte
}

// Page holds the extracted content of a single document page. Number is
// 1-indexed. Err is set when extraction of this page failed; the page then
// carries no blocks and the caller substitutes placeholder content.
type Page struct {
	Number int
	Blocks []Block
	Images []ImageRef
	Err    error
}

// DocumentSource provides page-by-page access to a document's content.
// Pages returns an error only when the source itself is unreadable;
// per-page extraction faults are reported on the individual Page.
type DocumentSource interface {
	Pages(ctx context.Context) ([]Page, error)
	Close() error
}

// BlockText joins the text of all spans in a block.
func BlockText(b Block) string {
	var sb strings.Builder
	for _, span := range b.Spans {
		sb.WriteString(span.Text)
	}
	return sb.String()
}
