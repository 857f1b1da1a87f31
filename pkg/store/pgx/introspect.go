package pgx

import (
	"context"
	"fmt"
	"sort"

	"github.com/topograph/topograph/pkg/common"
)

// catalogSchema is the PostgreSQL schema holding the graph tables.
const catalogSchema = "kg"

type foreignKey struct {
	column      string
	targetTable string
}

// IntrospectCatalog derives the graph catalog from the live database
// structure. A table referencing exactly two tables through foreign keys
// is a relationship, everything else is a node. The result is ordered
// with nodes first, each group sorted by name.
func (s *GraphDBStorage) IntrospectCatalog(ctx context.Context) ([]common.CatalogEntry, error) {
	tables, err := s.listTables(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]common.CatalogEntry, 0, len(tables))
	for _, table := range tables {
		columns, err := s.listColumns(ctx, table)
		if err != nil {
			return nil, err
		}
		fks, err := s.listForeignKeys(ctx, table)
		if err != nil {
			return nil, err
		}

		entry := common.CatalogEntry{
			Name:    table,
			Kind:    common.EntryNode,
			Columns: columns,
		}
		if len(fks) == 2 {
			entry.Kind = common.EntryRel
			entry.From = fks[0].targetTable
			entry.To = fks[1].targetTable
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Kind != entries[j].Kind {
			return entries[i].Kind == common.EntryNode
		}
		return entries[i].Name < entries[j].Name
	})

	return entries, nil
}

func (s *GraphDBStorage) listTables(ctx context.Context) ([]string, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`, catalogSchema)
	if err != nil {
		return nil, fmt.Errorf("listing catalog tables: %w", err)
	}
	defer rows.Close()

	tables := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func (s *GraphDBStorage) listColumns(ctx context.Context, table string) ([]common.ColumnInfo, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT
			c.column_name,
			c.data_type,
			EXISTS (
				SELECT 1
				FROM information_schema.table_constraints tc
				JOIN information_schema.key_column_usage kcu
					ON kcu.constraint_name = tc.constraint_name
					AND kcu.table_schema = tc.table_schema
				WHERE tc.table_schema = c.table_schema
					AND tc.table_name = c.table_name
					AND tc.constraint_type = 'PRIMARY KEY'
					AND kcu.column_name = c.column_name
			) AS is_primary_key
		FROM information_schema.columns c
		WHERE c.table_schema = $1 AND c.table_name = $2
		ORDER BY c.ordinal_position
	`, catalogSchema, table)
	if err != nil {
		return nil, fmt.Errorf("listing columns of %s: %w", table, err)
	}
	defer rows.Close()

	columns := make([]common.ColumnInfo, 0)
	for rows.Next() {
		var col common.ColumnInfo
		if err := rows.Scan(&col.Name, &col.Type, &col.IsPrimaryKey); err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func (s *GraphDBStorage) listForeignKeys(ctx context.Context, table string) ([]foreignKey, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT kcu.column_name, ccu.table_name AS target_table
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON kcu.constraint_name = tc.constraint_name
			AND kcu.table_schema = tc.table_schema
		JOIN information_schema.constraint_column_usage ccu
			ON ccu.constraint_name = tc.constraint_name
			AND ccu.table_schema = tc.table_schema
		WHERE tc.table_schema = $1
			AND tc.table_name = $2
			AND tc.constraint_type = 'FOREIGN KEY'
		ORDER BY kcu.column_name
	`, catalogSchema, table)
	if err != nil {
		return nil, fmt.Errorf("listing foreign keys of %s: %w", table, err)
	}
	defer rows.Close()

	fks := make([]foreignKey, 0)
	for rows.Next() {
		var fk foreignKey
		if err := rows.Scan(&fk.column, &fk.targetTable); err != nil {
			return nil, err
		}
		fks = append(fks, fk)
	}
	return fks, rows.Err()
}
