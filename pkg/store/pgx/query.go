package pgx

import (
	"context"
	"fmt"
	"strings"
)

// ExecuteQuery runs one read-only SELECT against the catalog and returns
// the result as one map per row, keyed by column name. Anything that is
// not a single SELECT statement is rejected before reaching the database.
func (s *GraphDBStorage) ExecuteQuery(ctx context.Context, query string) ([]map[string]any, error) {
	trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(query), ";"))
	if trimmed == "" {
		return nil, fmt.Errorf("empty query")
	}
	upper := strings.ToUpper(trimmed)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return nil, fmt.Errorf("only read queries are allowed")
	}
	if strings.Contains(trimmed, ";") {
		return nil, fmt.Errorf("only a single statement is allowed")
	}

	rows, err := s.conn.Query(ctx, trimmed)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	results := make([]map[string]any, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(map[string]any, len(fields))
		for i, field := range fields {
			row[field.Name] = values[i]
		}
		results = append(results, row)
	}
	return results, rows.Err()
}
