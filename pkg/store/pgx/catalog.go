package pgx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/topograph/topograph/internal/util"
	"github.com/topograph/topograph/pkg/common"

	pgxv5 "github.com/jackc/pgx/v5"
)

// CreateTopic upserts a topic node. Re-ingesting a document with the same
// id overwrites the name but keeps identity and inbound edges.
func (s *GraphDBStorage) CreateTopic(ctx context.Context, topic common.Topic) error {
	_, err := s.conn.Exec(ctx, `
		INSERT INTO kg."Topic" (id, name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
	`, topic.ID, util.SanitizePostgresText(topic.Name))
	if err != nil {
		return fmt.Errorf("upserting topic %s: %w", topic.ID, err)
	}
	return nil
}

func (s *GraphDBStorage) upsertSubtopic(ctx context.Context, sub common.Subtopic) error {
	imageMeta, err := json.Marshal(sub.ImageMetadata)
	if err != nil {
		return fmt.Errorf("encoding image metadata for subtopic %s: %w", sub.ID, err)
	}

	bullets := make([]string, 0, len(sub.BulletPoints))
	for _, b := range sub.BulletPoints {
		bullets = append(bullets, util.SanitizePostgresText(b))
	}

	_, err = s.conn.Exec(ctx, `
		INSERT INTO kg."Subtopic" (id, name, full_text, bullet_points, image_metadata)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			full_text = EXCLUDED.full_text,
			bullet_points = EXCLUDED.bullet_points,
			image_metadata = EXCLUDED.image_metadata
	`,
		sub.ID,
		util.SanitizePostgresText(sub.Name),
		util.SanitizePostgresText(sub.FullText),
		bullets,
		imageMeta,
	)
	if err != nil {
		return fmt.Errorf("upserting subtopic %s: %w", sub.ID, err)
	}
	return nil
}

// CreateAndLinkSubtopic upserts a subtopic node and its ordering edge to
// the owning topic. The edge keys on the subtopic id, so a subtopic never
// has more than one parent.
func (s *GraphDBStorage) CreateAndLinkSubtopic(
	ctx context.Context,
	topicID string,
	sub common.Subtopic,
	position int,
) error {
	if err := s.upsertSubtopic(ctx, sub); err != nil {
		return err
	}

	_, err := s.conn.Exec(ctx, `
		INSERT INTO kg."SUBTOPIC_OF" (subtopic_id, topic_id, position)
		VALUES ($1, $2, $3)
		ON CONFLICT (subtopic_id) DO UPDATE SET
			topic_id = EXCLUDED.topic_id,
			position = EXCLUDED.position
	`, sub.ID, topicID, position)
	if err != nil {
		return fmt.Errorf("linking subtopic %s to topic %s: %w", sub.ID, topicID, err)
	}
	return nil
}

// CreateNestedSubtopic upserts a subtopic and links it under either a topic
// or another subtopic depending on parentKind.
func (s *GraphDBStorage) CreateNestedSubtopic(
	ctx context.Context,
	parentID string,
	sub common.Subtopic,
	position int,
	parentKind common.ParentKind,
) error {
	switch parentKind {
	case common.ParentTopic:
		return s.CreateAndLinkSubtopic(ctx, parentID, sub, position)
	case common.ParentSubtopic:
	default:
		return fmt.Errorf("unknown parent kind %q", parentKind)
	}

	if err := s.upsertSubtopic(ctx, sub); err != nil {
		return err
	}

	_, err := s.conn.Exec(ctx, `
		INSERT INTO kg."SUBTOPIC_OF_SUBTOPIC" (subtopic_id, parent_id, position)
		VALUES ($1, $2, $3)
		ON CONFLICT (subtopic_id) DO UPDATE SET
			parent_id = EXCLUDED.parent_id,
			position = EXCLUDED.position
	`, sub.ID, parentID, position)
	if err != nil {
		return fmt.Errorf("linking subtopic %s under %s: %w", sub.ID, parentID, err)
	}
	return nil
}

// GetTopic returns one topic by id, or nil when it does not exist.
func (s *GraphDBStorage) GetTopic(ctx context.Context, id string) (*common.Topic, error) {
	var topic common.Topic
	err := s.conn.QueryRow(ctx, `
		SELECT id, name FROM kg."Topic" WHERE id = $1
	`, id).Scan(&topic.ID, &topic.Name)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading topic %s: %w", id, err)
	}
	return &topic, nil
}

// ListTopics returns all topics ordered by name.
func (s *GraphDBStorage) ListTopics(ctx context.Context) ([]common.Topic, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, name FROM kg."Topic" ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("listing topics: %w", err)
	}
	defer rows.Close()

	topics := make([]common.Topic, 0)
	for rows.Next() {
		var topic common.Topic
		if err := rows.Scan(&topic.ID, &topic.Name); err != nil {
			return nil, err
		}
		topics = append(topics, topic)
	}
	return topics, rows.Err()
}

// GetSubtopics returns the direct subtopics of a topic ordered by their
// sibling position.
func (s *GraphDBStorage) GetSubtopics(ctx context.Context, topicID string) ([]common.Subtopic, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT s.id, s.name, s.full_text, s.bullet_points, s.image_metadata
		FROM kg."Subtopic" s
		JOIN kg."SUBTOPIC_OF" e ON e.subtopic_id = s.id
		WHERE e.topic_id = $1
		ORDER BY e.position
	`, topicID)
	if err != nil {
		return nil, fmt.Errorf("reading subtopics of %s: %w", topicID, err)
	}
	defer rows.Close()

	subs := make([]common.Subtopic, 0)
	for rows.Next() {
		var (
			sub       common.Subtopic
			imageMeta []byte
		)
		if err := rows.Scan(&sub.ID, &sub.Name, &sub.FullText, &sub.BulletPoints, &imageMeta); err != nil {
			return nil, err
		}
		if len(imageMeta) > 0 {
			if err := json.Unmarshal(imageMeta, &sub.ImageMetadata); err != nil {
				return nil, fmt.Errorf("decoding image metadata of %s: %w", sub.ID, err)
			}
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}
