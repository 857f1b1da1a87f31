// Package pgx implements store.GraphStorage on PostgreSQL.
package pgx

import (
	"context"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
	Begin(ctx context.Context) (pgxv5.Tx, error)
}

// GraphDBStorage implements the GraphStorage interface on a PostgreSQL
// schema holding one table per node label and one per relationship type.
type GraphDBStorage struct {
	conn pgxIConn
}

// NewGraphDBStorageWithConnection creates a new GraphDBStorage using an
// existing database connection or pool.
func NewGraphDBStorageWithConnection(
	ctx context.Context,
	conn pgxIConn,
) (*GraphDBStorage, error) {
	return &GraphDBStorage{
		conn: conn,
	}, nil
}
