package schema

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/topograph/topograph/pkg/common"
)

// fakeStorage implements the introspection part of store.GraphStorage.
type fakeStorage struct {
	entries []common.CatalogEntry
}

func (f *fakeStorage) IntrospectCatalog(ctx context.Context) ([]common.CatalogEntry, error) {
	return f.entries, nil
}

func (f *fakeStorage) CreateTopic(ctx context.Context, topic common.Topic) error { return nil }
func (f *fakeStorage) CreateAndLinkSubtopic(ctx context.Context, topicID string, sub common.Subtopic, position int) error {
	return nil
}
func (f *fakeStorage) CreateNestedSubtopic(ctx context.Context, parentID string, sub common.Subtopic, position int, parentKind common.ParentKind) error {
	return nil
}
func (f *fakeStorage) GetTopic(ctx context.Context, id string) (*common.Topic, error) {
	return nil, nil
}
func (f *fakeStorage) GetSubtopics(ctx context.Context, topicID string) ([]common.Subtopic, error) {
	return nil, nil
}
func (f *fakeStorage) ListTopics(ctx context.Context) ([]common.Topic, error) { return nil, nil }
func (f *fakeStorage) ExecuteQuery(ctx context.Context, query string) ([]map[string]any, error) {
	return nil, nil
}

func catalogFixture() []common.CatalogEntry {
	return []common.CatalogEntry{
		{
			Name: "Topic",
			Kind: common.EntryNode,
			Columns: []common.ColumnInfo{
				{Name: "id", Type: "text", IsPrimaryKey: true},
				{Name: "name", Type: "text"},
			},
		},
		{
			Name: "Subtopic",
			Kind: common.EntryNode,
			Columns: []common.ColumnInfo{
				{Name: "id", Type: "text", IsPrimaryKey: true},
				{Name: "name", Type: "text"},
				{Name: "full_text", Type: "text"},
			},
		},
		{
			Name: "SUBTOPIC_OF",
			Kind: common.EntryRel,
			From: "Subtopic",
			To:   "Topic",
			Columns: []common.ColumnInfo{
				{Name: "subtopic_id", Type: "text", IsPrimaryKey: true},
				{Name: "topic_id", Type: "text"},
				{Name: "position", Type: "integer"},
			},
		},
	}
}

func TestSerialize(t *testing.T) {
	text, err := Serialize(context.Background(), &fakeStorage{entries: catalogFixture()})
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}

	wantLines := []string{
		"Nodes:",
		"  - Topic",
		"  - Subtopic",
		"Relationships:",
		"  - SUBTOPIC_OF (Subtopic -> Topic)",
		"Properties:",
		"  - Topic: id (text, primary key), name (text)",
		"  - Subtopic: id (text, primary key), name (text), full_text (text)",
		"  - SUBTOPIC_OF: subtopic_id (text, primary key), topic_id (text), position (integer)",
	}
	if text != strings.Join(wantLines, "\n") {
		t.Errorf("Serialize() =\n%s\nwant:\n%s", text, strings.Join(wantLines, "\n"))
	}
}

func TestSerializeEmptyCatalog(t *testing.T) {
	text, err := Serialize(context.Background(), &fakeStorage{})
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}

	want := "Nodes:\n  None\nRelationships:\n  None\nProperties:\n  None"
	if text != want {
		t.Errorf("Serialize() = %q, want %q", text, want)
	}

	if !Parse(text).IsEmpty() {
		t.Error("parsed empty catalog should report IsEmpty")
	}
}

func TestParseRoundTrip(t *testing.T) {
	text, err := Serialize(context.Background(), &fakeStorage{entries: catalogFixture()})
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}

	got := Parse(text)

	if !reflect.DeepEqual(got.Nodes, []string{"Topic", "Subtopic"}) {
		t.Errorf("Nodes = %v", got.Nodes)
	}
	if !reflect.DeepEqual(got.Relationships, []string{"SUBTOPIC_OF (Subtopic -> Topic)"}) {
		t.Errorf("Relationships = %v", got.Relationships)
	}
	if len(got.Properties) != 3 {
		t.Errorf("Properties = %v, want 3 entries", got.Properties)
	}
}

func TestParseNoneOverridesBullets(t *testing.T) {
	text := "Nodes:\n  None\n  - Ghost\nRelationships:\n  None\nProperties:\n  None"
	got := Parse(text)
	if len(got.Nodes) != 0 {
		t.Errorf("Nodes = %v, want empty when section carries None", got.Nodes)
	}
}

func TestParseIgnoresUnknownLines(t *testing.T) {
	text := "preamble\nNodes:\n  - Topic\nunrelated line\nRelationships:\n  None\nProperties:\n  - Topic: id (text)"
	got := Parse(text)
	if !reflect.DeepEqual(got.Nodes, []string{"Topic"}) {
		t.Errorf("Nodes = %v", got.Nodes)
	}
	if got.Relationships != nil {
		t.Errorf("Relationships = %v, want nil", got.Relationships)
	}
}
