package common

// Topic is the root node of one ingested document's knowledge graph.
// It is created once per ingestion run; re-running ingestion with the
// same id overwrites the name but preserves identity and inbound edges.
type Topic struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Subtopic represents one structural or semantic unit within a document.
// Every Subtopic is owned by exactly one parent, either a Topic or another
// Subtopic, through an ordering relationship that carries its sibling
// position.
type Subtopic struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	FullText      string      `json:"full_text"`
	BulletPoints  []string    `json:"bullet_points"`
	ImageMetadata []ImageMeta `json:"image_metadata"`
}

// ImageMeta describes one image associated with a Subtopic. It is stored
// as an embedded value on the Subtopic, not as a separately queryable node.
type ImageMeta struct {
	ImagePath  string `json:"image_path"`
	ImageName  string `json:"image_name"`
	PageNumber int    `json:"page_number"`
	URL        string `json:"url"`
}

// ParentKind identifies the type of a Subtopic's parent node.
type ParentKind string

const (
	ParentTopic    ParentKind = "Topic"
	ParentSubtopic ParentKind = "Subtopic"
)

// Segment is the transient pipeline representation of a subtopic candidate.
// It is produced by the structural segmenter, mutated by the refiner and
// the enrichment stage, and discarded once persisted as a Subtopic.
//
// StartPage and EndPage are 1-indexed and inclusive.
type Segment struct {
	Title     string
	BodyText  string
	StartPage int
	EndPage   int

	BulletPoints []string
	Images       []ImageMeta
}

// ColumnInfo describes one column of a catalog entry.
type ColumnInfo struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	IsPrimaryKey bool   `json:"is_primary_key"`
}

// EntryKind distinguishes node tables from relationship tables in the
// graph catalog.
type EntryKind string

const (
	EntryNode EntryKind = "NODE"
	EntryRel  EntryKind = "REL"
)

// CatalogEntry is a read-time projection of one graph entity type. It is
// derived on demand by schema introspection and is never a source of truth.
// From and To are only set for relationship entries.
type CatalogEntry struct {
	Name    string       `json:"name"`
	Kind    EntryKind    `json:"kind"`
	Columns []ColumnInfo `json:"columns"`
	From    string       `json:"from,omitempty"`
	To      string       `json:"to,omitempty"`
}
