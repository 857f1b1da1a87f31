// Package pdf implements loader.DocumentSource for PDF files. Text is read
// span by span with font size and weight preserved so the segmenter can
// apply its heading heuristics.
package pdf

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	ldpdf "github.com/ledongthuc/pdf"

	"github.com/topograph/topograph/pkg/loader"
)

// Source reads pages from a single PDF document.
type Source struct {
	file   *os.File
	reader *ldpdf.Reader
}

// Open opens the PDF at path. An unreadable or non-PDF file fails here,
// before any page is touched.
func Open(path string) (*Source, error) {
	file, reader, err := ldpdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	return &Source{file: file, reader: reader}, nil
}

// NewSource creates a Source over in-memory PDF bytes.
func NewSource(data []byte) (*Source, error) {
	reader, err := ldpdf.NewReader(&byteReaderAt{data: data}, int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse pdf: %w", err)
	}
	return &Source{reader: reader}, nil
}

type byteReaderAt struct {
	data []byte
}

func (b *byteReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(b.data)) {
		return 0, io.EOF
	}
	n := copy(p, b.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Pages extracts every page of the document. Extraction faults are
// isolated per page and reported on the returned Page value.
func (s *Source) Pages(ctx context.Context) ([]loader.Page, error) {
	total := s.reader.NumPage()
	pages := make([]loader.Page, 0, total)

	for num := 1; num <= total; num++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pages = append(pages, s.extractPage(num))
	}

	return pages, nil
}

func (s *Source) extractPage(num int) (page loader.Page) {
	page.Number = num

	// The underlying parser panics on some malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			page.Blocks = nil
			page.Err = fmt.Errorf("page %d extraction failed: %v", num, r)
		}
	}()

	p := s.reader.Page(num)
	if p.V.IsNull() {
		page.Err = fmt.Errorf("page %d not found", num)
		return page
	}

	content := p.Content()
	frags := make([]fragment, 0, len(content.Text))
	for _, t := range content.Text {
		frags = append(frags, fragment{
			text: t.S,
			font: t.Font,
			size: t.FontSize,
			y:    t.Y,
		})
	}
	page.Blocks = groupBlocks(frags)
	page.Images = extractImages(p)

	return page
}

// Close releases the underlying file handle, if any.
func (s *Source) Close() error {
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}

// fragment is one positioned text chunk from the content stream.
type fragment struct {
	text string
	font string
	size float64
	y    float64
}

const lineTolerance = 0.5

// groupBlocks assembles raw content-stream fragments into blocks of styled
// spans. Fragments sharing a baseline form one block; consecutive fragments
// with the same font size and weight collapse into a single span.
func groupBlocks(frags []fragment) []loader.Block {
	var blocks []loader.Block
	var current []loader.Span
	lastY := math.Inf(1)

	flush := func() {
		if len(current) == 0 {
			return
		}
		blocks = append(blocks, loader.Block{Spans: current})
		current = nil
	}

	for _, f := range frags {
		if f.text == "" {
			continue
		}

		if len(current) > 0 && math.Abs(f.y-lastY) > lineTolerance {
			flush()
		}
		lastY = f.y

		bold := isBoldFont(f.font)
		if n := len(current); n > 0 &&
			current[n-1].FontSize == f.size &&
			current[n-1].Bold == bold {
			current[n-1].Text += f.text
			continue
		}

		current = append(current, loader.Span{
			Text:     f.text,
			FontSize: f.size,
			Bold:     bold,
		})
	}
	flush()

	return blocks
}

// isBoldFont checks the font name for a bold weight marker. PDF font names
// carry the weight as a suffix, e.g. "Helvetica-Bold" or "ABCDEF+Arial-BoldMT".
func isBoldFont(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "bold") || strings.Contains(lower, "black") ||
		strings.Contains(lower, "heavy")
}

// extractImages pulls embedded image XObjects from the page resources.
// Failures here degrade to an empty image list, text extraction is not
// affected.
func extractImages(p ldpdf.Page) (images []loader.ImageRef) {
	defer func() {
		if r := recover(); r != nil {
			images = nil
		}
	}()

	xobj := p.V.Key("Resources").Key("XObject")
	if xobj.IsNull() {
		return nil
	}

	for _, name := range xobj.Keys() {
		obj := xobj.Key(name)
		if obj.Key("Subtype").Name() != "Image" {
			continue
		}

		ref := loader.ImageRef{Name: name}
		reader := obj.Reader()
		if reader != nil {
			if data, err := io.ReadAll(reader); err == nil {
				ref.Data = data
			}
			reader.Close()
		}
		images = append(images, ref)
	}

	return images
}
