package readstore

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// DB is the query surface the read stores need. Both *pgxpool.Pool and
// pgx.Tx satisfy it.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
