// Package ingest orchestrates the document ingestion pipeline: extraction,
// segmentation, refinement, enrichment, and catalog persistence.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/topograph/topograph/internal/util"
	"github.com/topograph/topograph/pkg/common"
	"github.com/topograph/topograph/pkg/leaselock"
	"github.com/topograph/topograph/pkg/loader"
	"github.com/topograph/topograph/pkg/logger"
	"github.com/topograph/topograph/pkg/segment"
	"github.com/topograph/topograph/pkg/store"
	"github.com/topograph/topograph/pkg/tag"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Title fragments handed to document title generation are cut per fragment.
const titleFragmentChars = 400

// Synthesizer is the generation surface the pipeline needs. Implemented by
// enrich.Synthesizer.
type Synthesizer interface {
	segment.Namer
	GenerateTitle(ctx context.Context, fragments []string) (string, error)
	EnrichSegments(ctx context.Context, segments []common.Segment) []common.Segment
}

// ImageStore persists extracted images and returns their metadata record.
type ImageStore interface {
	Upload(ctx context.Context, docID string, name string, pageNumber int, data []byte) (common.ImageMeta, error)
}

// Document describes one ingestion request. ID and Name are generated when
// empty.
type Document struct {
	ID     string
	Name   string
	Source loader.DocumentSource
}

// Pipeline runs ingestion end to end and persists the resulting graph.
type Pipeline struct {
	storage     store.GraphStorage
	synthesizer Synthesizer
	segmenter   *segment.Segmenter
	refiner     *segment.Refiner
	locks       *leaselock.Client
	images      ImageStore
}

// NewPipelineParams contains configuration options for creating a new Pipeline.
type NewPipelineParams struct {
	Storage     store.GraphStorage
	Synthesizer Synthesizer
	Tagger      tag.Tagger

	// Locks serializes ingestion per document when set.
	Locks *leaselock.Client

	// Images receives extracted images when set.
	Images ImageStore
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(params NewPipelineParams) *Pipeline {
	return &Pipeline{
		storage:     params.Storage,
		synthesizer: params.Synthesizer,
		segmenter:   segment.NewSegmenter(params.Tagger),
		refiner:     segment.NewRefiner(params.Synthesizer),
		locks:       params.Locks,
		images:      params.Images,
	}
}

// Ingest processes one document and persists its topic and subtopics.
// An unreadable source aborts before anything is persisted. Per-subtopic
// write faults are logged and skipped.
func (p *Pipeline) Ingest(ctx context.Context, doc Document) (*common.Topic, error) {
	if doc.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return nil, err
		}
		doc.ID = id
	}

	if p.locks == nil {
		return p.ingest(ctx, doc)
	}

	var topic *common.Topic
	err := p.locks.WithLease(ctx, "ingest:"+doc.ID, leaselock.Options{
		TTL:  10 * time.Minute,
		Wait: false,
	}, func(ctx context.Context) error {
		var err error
		topic, err = p.ingest(ctx, doc)
		return err
	})
	if err != nil {
		return nil, err
	}
	return topic, nil
}

func (p *Pipeline) ingest(ctx context.Context, doc Document) (*common.Topic, error) {
	pages, err := doc.Source.Pages(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading document %s: %w", doc.ID, err)
	}

	segments := p.segmenter.Segment(pages)
	if len(segments) == 0 {
		return nil, fmt.Errorf("document %s contains no extractable text", doc.ID)
	}
	logger.Info("[Ingest] Segmented document", "document", doc.ID, "segments", len(segments))

	segments = p.refiner.Refine(ctx, segments)
	segments = p.synthesizer.EnrichSegments(ctx, segments)

	if p.images != nil {
		p.attachImages(ctx, doc.ID, pages, segments)
	}

	topic := common.Topic{
		ID:   doc.ID,
		Name: doc.Name,
	}
	if topic.Name == "" {
		topic.Name = p.deriveTitle(ctx, doc.ID, pages, segments)
	}

	if err := p.storage.CreateTopic(ctx, topic); err != nil {
		return nil, fmt.Errorf("persisting topic %s: %w", doc.ID, err)
	}

	persisted := 0
	for i, seg := range segments {
		subID, err := gonanoid.New()
		if err != nil {
			logger.Error("[Ingest] Skipping subtopic, id generation failed", "document", doc.ID, "error", err)
			continue
		}
		sub := common.Subtopic{
			ID:            subID,
			Name:          seg.Title,
			FullText:      seg.BodyText,
			BulletPoints:  seg.BulletPoints,
			ImageMetadata: seg.Images,
		}
		position := i + 1
		err = util.RetryErrWithContext(ctx, 2, func(ctx context.Context) error {
			return p.storage.CreateAndLinkSubtopic(ctx, topic.ID, sub, position)
		})
		if err != nil {
			logger.Error("[Ingest] Skipping subtopic, write failed", "document", doc.ID, "subtopic", seg.Title, "error", err)
			continue
		}
		persisted++
	}

	logger.Info("[Ingest] Document ingested", "document", doc.ID, "topic", topic.Name, "subtopics", persisted)
	return &topic, nil
}

// deriveTitle generates a document title from first-page text fragments.
func (p *Pipeline) deriveTitle(ctx context.Context, docID string, pages []loader.Page, segments []common.Segment) string {
	fragments := make([]string, 0, 4)
	for _, page := range pages {
		if page.Err != nil {
			continue
		}
		for _, block := range page.Blocks {
			fragments = append(fragments, util.TruncateChars(loader.BlockText(block), titleFragmentChars))
			if len(fragments) >= 4 {
				break
			}
		}
		break
	}
	if len(fragments) == 0 && len(segments) > 0 {
		fragments = append(fragments, util.TruncateChars(segments[0].BodyText, titleFragmentChars))
	}

	title, err := p.synthesizer.GenerateTitle(ctx, fragments)
	if err != nil || title == "" {
		logger.Warn("[Ingest] Title generation failed, using first segment title", "document", docID, "error", err)
		if len(segments) > 0 && segments[0].Title != "" {
			return segments[0].Title
		}
		return "Document " + docID
	}
	return title
}

// attachImages uploads every page image and attaches its metadata to the
// segments whose page range covers that page. Upload faults drop the
// single image and continue.
func (p *Pipeline) attachImages(ctx context.Context, docID string, pages []loader.Page, segments []common.Segment) {
	for _, page := range pages {
		for _, img := range page.Images {
			meta, err := p.images.Upload(ctx, docID, img.Name, page.Number, img.Data)
			if err != nil {
				logger.Warn("[Ingest] Image upload failed", "document", docID, "image", img.Name, "error", err)
				continue
			}
			for i := range segments {
				if page.Number >= segments[i].StartPage && page.Number <= segments[i].EndPage {
					segments[i].Images = append(segments[i].Images, meta)
				}
			}
		}
	}
}
