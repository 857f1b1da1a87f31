package segment

import (
	"context"
	"fmt"
	"strings"

	"github.com/topograph/topograph/internal/util"
	"github.com/topograph/topograph/pkg/common"
	"github.com/topograph/topograph/pkg/logger"
)

const (
	// Segments with less body text than this carry too little signal
	// to stand on their own and get dropped.
	refinerMinBodyChars = 50

	// Length of the body prefix used for duplicate detection.
	refinerDedupPrefixChars = 100

	// Length of the body prefix handed to the namer when a title has
	// to be regenerated.
	refinerNamePrefixChars = 500

	refinerMaxTitleWords = 10
)

// Namer produces a short descriptive title for a text fragment. The
// enrichment synthesizer satisfies this.
type Namer interface {
	GenerateName(ctx context.Context, fragment string) (string, error)
}

// Refiner filters and repairs raw segments before enrichment.
type Refiner struct {
	namer Namer
}

// NewRefiner creates a refiner that uses namer to replace low quality titles.
func NewRefiner(namer Namer) *Refiner {
	return &Refiner{namer: namer}
}

// Refine drops short and duplicate segments, regenerates low quality
// titles, and guarantees a non-empty result when the input held any text.
// Segment order is preserved.
func (r *Refiner) Refine(ctx context.Context, segments []common.Segment) []common.Segment {
	seen := make(map[string]bool, len(segments))
	out := make([]common.Segment, 0, len(segments))

	for _, seg := range segments {
		body := strings.TrimSpace(seg.BodyText)
		if len(body) < refinerMinBodyChars {
			logger.Debug("[Refiner] Dropping short segment", "title", seg.Title, "chars", len(body))
			continue
		}

		prefix := util.TruncateChars(body, refinerDedupPrefixChars)
		if seen[prefix] {
			logger.Debug("[Refiner] Dropping duplicate segment", "title", seg.Title)
			continue
		}
		seen[prefix] = true

		if needsBetterTitle(seg.Title) {
			seg.Title = r.regenerateTitle(ctx, body, len(out)+1)
		}

		out = append(out, seg)
	}

	if len(out) == 0 {
		if whole := mergeAll(segments); whole != nil {
			whole.Title = r.regenerateTitle(ctx, whole.BodyText, 1)
			return []common.Segment{*whole}
		}
	}

	return out
}

func (r *Refiner) regenerateTitle(ctx context.Context, body string, position int) string {
	fragment := util.TruncateChars(body, refinerNamePrefixChars)
	name, err := r.namer.GenerateName(ctx, fragment)
	name = strings.TrimSpace(name)
	if err != nil || name == "" {
		logger.Warn("[Refiner] Title generation failed, using fallback", "position", position, "error", err)
		return fmt.Sprintf("Section %d", position)
	}
	return name
}

// needsBetterTitle reports whether a title is too generic or malformed to
// keep: placeholder titles, titles outside a sane word count range, and
// shouting all-caps titles.
func needsBetterTitle(title string) bool {
	title = strings.TrimSpace(title)
	if title == "" || title == fallbackTitle {
		return true
	}
	if strings.HasPrefix(strings.ToLower(title), "untitled") {
		return true
	}
	if len(strings.Fields(title)) > refinerMaxTitleWords {
		return true
	}
	return isAllUpper(title)
}

// mergeAll collapses all input segments into one whole-document segment,
// or nil when there is no text at all.
func mergeAll(segments []common.Segment) *common.Segment {
	var sb strings.Builder
	start, end := 0, 0
	for _, seg := range segments {
		body := strings.TrimSpace(seg.BodyText)
		if body == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(body)
		if start == 0 {
			start = seg.StartPage
		}
		end = seg.EndPage
	}
	if sb.Len() == 0 {
		return nil
	}
	if start == 0 {
		start, end = 1, 1
	}
	return &common.Segment{
		BodyText:  sb.String(),
		StartPage: start,
		EndPage:   end,
	}
}
