// Package enrich generates titles, section names, summaries, and relevance
// scores for document segments using the configured AI backend.
package enrich

import (
	"context"
	"fmt"
	"strings"

	"github.com/topograph/topograph/internal/util"
	"github.com/topograph/topograph/pkg/ai"
	"github.com/topograph/topograph/pkg/common"
	"github.com/topograph/topograph/pkg/logger"

	"golang.org/x/sync/errgroup"
)

const (
	// Bullet generation runs at most this many segments in parallel.
	defaultMaxConcurrent = 2

	// Body text handed to the bullet prompt is cut to this many tokens.
	bulletMaxTokens = 6000

	placeholderBullet = "Summary unavailable for this section."
)

// Synthesizer wraps a GraphAIClient with the generation capabilities the
// ingestion pipeline needs.
type Synthesizer struct {
	client        ai.GraphAIClient
	maxConcurrent int
}

// NewSynthesizerParams contains configuration options for creating a new Synthesizer.
type NewSynthesizerParams struct {
	Client        ai.GraphAIClient
	MaxConcurrent int
}

// NewSynthesizer creates a synthesizer over the given AI client.
func NewSynthesizer(params NewSynthesizerParams) *Synthesizer {
	maxConcurrent := params.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	return &Synthesizer{
		client:        params.Client,
		maxConcurrent: maxConcurrent,
	}
}

type bulletPointsResult struct {
	BulletPoints []string `json:"bullet_points"`
}

type relevanceResult struct {
	Score float64 `json:"score"`
}

// GenerateTitle derives a document title from text fragments taken from the
// first pages of the document.
func (s *Synthesizer) GenerateTitle(ctx context.Context, fragments []string) (string, error) {
	prompt := fmt.Sprintf(ai.DocumentTitlePrompt, strings.Join(fragments, "\n---\n"))
	title, err := s.client.GenerateCompletion(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generating document title: %w", err)
	}
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(title), `"`)), nil
}

// GenerateName derives a concise section name from the beginning of the
// section's text. It satisfies segment.Namer.
func (s *Synthesizer) GenerateName(ctx context.Context, fragment string) (string, error) {
	prompt := fmt.Sprintf(ai.SubtopicNamePrompt, fragment)
	name, err := s.client.GenerateCompletion(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generating section name: %w", err)
	}
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(name), `"`)), nil
}

// GenerateBullets summarizes a section text into a short list of bullet points.
func (s *Synthesizer) GenerateBullets(ctx context.Context, text string) ([]string, error) {
	bounded := util.TruncateTokens(text, "o200k_base", bulletMaxTokens)
	prompt := fmt.Sprintf(ai.BulletPointsPrompt, bounded)

	result, err := util.RetryWithContext(ctx, 2, func(ctx context.Context) (bulletPointsResult, error) {
		var r bulletPointsResult
		err := s.client.GenerateCompletionWithFormat(
			ctx,
			"bullet_points",
			"The most important statements of the text as bullet points",
			prompt,
			&r,
		)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("generating bullet points: %w", err)
	}
	return result.BulletPoints, nil
}

// CheckRelevance rates how relevant a section text is to its parent topic
// on a scale from 0.0 to 1.0.
func (s *Synthesizer) CheckRelevance(ctx context.Context, topic string, text string) (float64, error) {
	bounded := util.TruncateTokens(text, "o200k_base", bulletMaxTokens)
	prompt := fmt.Sprintf(ai.RelevancePrompt, topic, bounded)

	var result relevanceResult
	err := s.client.GenerateCompletionWithFormat(
		ctx,
		"relevance_score",
		"Relevance of the section to the topic between 0.0 and 1.0",
		prompt,
		&result,
	)
	if err != nil {
		return 0, fmt.Errorf("checking relevance: %w", err)
	}
	return result.Score, nil
}

// EnrichSegments generates bullet points for every segment concurrently,
// bounded by the configured limit. Output order equals input order. A
// failed segment gets one placeholder bullet and never affects siblings.
func (s *Synthesizer) EnrichSegments(ctx context.Context, segments []common.Segment) []common.Segment {
	out := make([]common.Segment, len(segments))
	copy(out, segments)

	group := errgroup.Group{}
	group.SetLimit(s.maxConcurrent)

	for i := range out {
		group.Go(func() error {
			bullets, err := s.GenerateBullets(ctx, out[i].BodyText)
			if err != nil || len(bullets) == 0 {
				logger.Warn("[Enrich] Bullet generation failed", "segment", out[i].Title, "error", err)
				out[i].BulletPoints = []string{placeholderBullet}
				return nil
			}
			out[i].BulletPoints = bullets
			return nil
		})
	}

	// Workers never return errors, faults degrade to placeholders.
	_ = group.Wait()

	return out
}
