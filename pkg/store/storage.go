// Package store defines the persistence contract for the topic/subtopic
// knowledge graph catalog.
package store

import (
	"context"

	"github.com/topograph/topograph/pkg/common"
)

// GraphStorage defines the interface for persisting and querying the
// knowledge graph catalog. Writes are id-keyed upserts; multi-statement
// writes are not atomic and callers treat failures as retry-or-skip.
type GraphStorage interface {
	CreateTopic(ctx context.Context, topic common.Topic) error
	CreateAndLinkSubtopic(ctx context.Context, topicID string, sub common.Subtopic, position int) error
	CreateNestedSubtopic(ctx context.Context, parentID string, sub common.Subtopic, position int, parentKind common.ParentKind) error

	GetTopic(ctx context.Context, id string) (*common.Topic, error)
	GetSubtopics(ctx context.Context, topicID string) ([]common.Subtopic, error)
	ListTopics(ctx context.Context) ([]common.Topic, error)

	IntrospectCatalog(ctx context.Context) ([]common.CatalogEntry, error)
	ExecuteQuery(ctx context.Context, query string) ([]map[string]any, error)
}
