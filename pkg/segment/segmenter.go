package segment

import (
	"fmt"
	"strings"

	"github.com/topograph/topograph/pkg/common"
	"github.com/topograph/topograph/pkg/loader"
	"github.com/topograph/topograph/pkg/tag"
)

// Title given to the whole-document segment when no heading is ever found.
// The refiner treats it as a placeholder and requests a generated name.
const fallbackTitle = "Untitled Document"

// Segmenter partitions a document's pages into ordered titled segments
// using the heading classifier.
type Segmenter struct {
	tagger tag.Tagger
}

// NewSegmenter creates a segmenter backed by the given part-of-speech tagger.
func NewSegmenter(tagger tag.Tagger) *Segmenter {
	return &Segmenter{tagger: tagger}
}

// walk state of one segmentation run
type segmentState struct {
	heading   string
	open      bool
	body      strings.Builder
	startPage int
	endPage   int
	segments  []common.Segment
}

func (st *segmentState) appendBody(text string, page int) {
	if strings.TrimSpace(text) == "" {
		return
	}
	if st.body.Len() > 0 {
		st.body.WriteString("\n")
	}
	st.body.WriteString(text)
	if st.open {
		st.endPage = page
	}
}

func (st *segmentState) close() {
	if !st.open || strings.TrimSpace(st.body.String()) == "" {
		return
	}
	end := st.endPage
	if end < st.startPage {
		end = st.startPage
	}
	st.segments = append(st.segments, common.Segment{
		Title:     st.heading,
		BodyText:  st.body.String(),
		StartPage: st.startPage,
		EndPage:   end,
	})
}

func (st *segmentState) openHeading(title string, page int) {
	st.heading = title
	st.open = true
	st.body.Reset()
	st.startPage = page
	st.endPage = page
}

// Segment walks pages in order, blocks in order, and applies the heading
// transition rule: a new heading candidate closes the currently open
// segment when its body is non-empty, then opens a new one starting on the
// current page. The final open segment is flushed at end of document.
//
// A page carrying an extraction fault contributes an error marker as its
// text instead of aborting the run. If no heading is ever found but text
// exists, a single generically titled segment spanning the whole document
// is returned.
func (s *Segmenter) Segment(pages []loader.Page) []common.Segment {
	st := &segmentState{}

	var fullText strings.Builder
	firstPage, lastPage := 0, 0

	for _, page := range pages {
		if firstPage == 0 {
			firstPage = page.Number
		}
		lastPage = page.Number

		if page.Err != nil {
			marker := fmt.Sprintf("[page %d could not be extracted]", page.Number)
			st.appendBody(marker, page.Number)
			fullText.WriteString(marker + "\n")
			continue
		}

		for _, block := range page.Blocks {
			blockText := loader.BlockText(block)
			fullText.WriteString(blockText + "\n")

			heading, rest := s.pickHeading(block)
			if heading == "" {
				st.appendBody(blockText, page.Number)
				continue
			}

			st.close()
			st.openHeading(heading, page.Number)
			st.appendBody(rest, page.Number)
		}
	}

	st.close()

	if len(st.segments) == 0 {
		text := strings.TrimSpace(fullText.String())
		if text == "" {
			return nil
		}
		if firstPage == 0 {
			firstPage, lastPage = 1, 1
		}
		return []common.Segment{{
			Title:     fallbackTitle,
			BodyText:  text,
			StartPage: firstPage,
			EndPage:   lastPage,
		}}
	}

	return st.segments
}

// pickHeading returns the most prominent heading-like span of a block and
// the concatenated text of the remaining spans. Prominence is the largest
// font size, ties broken by boldness. An empty heading means the block is
// body text.
func (s *Segmenter) pickHeading(block loader.Block) (heading string, rest string) {
	bestIdx := -1
	for i, span := range block.Spans {
		if !IsHeading(span, s.tagger) {
			continue
		}
		if bestIdx < 0 {
			bestIdx = i
			continue
		}
		best := block.Spans[bestIdx]
		if span.FontSize > best.FontSize ||
			(span.FontSize == best.FontSize && span.Bold && !best.Bold) {
			bestIdx = i
		}
	}

	if bestIdx < 0 {
		return "", ""
	}

	var sb strings.Builder
	for i, span := range block.Spans {
		if i == bestIdx {
			continue
		}
		sb.WriteString(span.Text)
	}
	return strings.TrimSpace(block.Spans[bestIdx].Text), strings.TrimSpace(sb.String())
}
