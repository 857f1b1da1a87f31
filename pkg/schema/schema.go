// Package schema turns the introspected graph catalog into the canonical
// text form used in query-generation prompts, and back.
package schema

import (
	"context"
	"fmt"
	"strings"

	"github.com/topograph/topograph/pkg/common"
	"github.com/topograph/topograph/pkg/store"
)

const (
	nodesHeader         = "Nodes:"
	relationshipsHeader = "Relationships:"
	propertiesHeader    = "Properties:"

	bulletPrefix = "  - "
	emptySection = "None"
)

// Schema is the parsed form of the serialized catalog text.
type Schema struct {
	Nodes         []string
	Relationships []string
	Properties    []string
}

// IsEmpty reports whether the schema has neither nodes nor relationships.
func (s Schema) IsEmpty() bool {
	return len(s.Nodes) == 0 && len(s.Relationships) == 0
}

// Serialize introspects the catalog and renders it as block-structured
// text with three labeled sections. Empty sections carry the literal
// "None" instead of bullets.
func Serialize(ctx context.Context, storage store.GraphStorage) (string, error) {
	entries, err := storage.IntrospectCatalog(ctx)
	if err != nil {
		return "", fmt.Errorf("introspecting catalog: %w", err)
	}

	var nodes, relationships, properties []string
	for _, entry := range entries {
		switch entry.Kind {
		case common.EntryRel:
			relationships = append(relationships,
				fmt.Sprintf("%s (%s -> %s)", entry.Name, entry.From, entry.To))
		default:
			nodes = append(nodes, entry.Name)
		}
		properties = append(properties, formatProperties(entry))
	}

	var sb strings.Builder
	writeSection(&sb, nodesHeader, nodes)
	writeSection(&sb, relationshipsHeader, relationships)
	writeSection(&sb, propertiesHeader, properties)
	return strings.TrimSuffix(sb.String(), "\n"), nil
}

func formatProperties(entry common.CatalogEntry) string {
	cols := make([]string, 0, len(entry.Columns))
	for _, col := range entry.Columns {
		if col.IsPrimaryKey {
			cols = append(cols, fmt.Sprintf("%s (%s, primary key)", col.Name, col.Type))
			continue
		}
		cols = append(cols, fmt.Sprintf("%s (%s)", col.Name, col.Type))
	}
	return fmt.Sprintf("%s: %s", entry.Name, strings.Join(cols, ", "))
}

func writeSection(sb *strings.Builder, header string, items []string) {
	sb.WriteString(header + "\n")
	if len(items) == 0 {
		sb.WriteString("  " + emptySection + "\n")
		return
	}
	for _, item := range items {
		sb.WriteString(bulletPrefix + item + "\n")
	}
}

// Parse is the structural inverse of Serialize. It locates the three
// labeled sections by header text and collects the bullet lines of each,
// stripping the bullet prefix. A section containing the literal "None" is
// empty regardless of any bullet lines present.
func Parse(text string) Schema {
	sections := map[string][]string{}
	sectionEmpty := map[string]bool{}

	current := ""
	for _, line := range strings.Split(text, "\n") {
		switch strings.TrimSpace(line) {
		case nodesHeader, relationshipsHeader, propertiesHeader:
			current = strings.TrimSpace(line)
			continue
		}
		if current == "" {
			continue
		}
		if strings.TrimSpace(line) == emptySection {
			sectionEmpty[current] = true
			continue
		}
		if strings.HasPrefix(line, bulletPrefix) {
			sections[current] = append(sections[current], strings.TrimPrefix(line, bulletPrefix))
		}
	}

	result := Schema{}
	if !sectionEmpty[nodesHeader] {
		result.Nodes = sections[nodesHeader]
	}
	if !sectionEmpty[relationshipsHeader] {
		result.Relationships = sections[relationshipsHeader]
	}
	if !sectionEmpty[propertiesHeader] {
		result.Properties = sections[propertiesHeader]
	}
	return result
}
