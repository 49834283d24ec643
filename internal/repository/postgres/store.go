// Package postgres implements the persistent stores for the checkout
// pipeline: the menu catalog, promo codes with their usage counters, stored
// credits, and checkout sessions. All counter and flag mutations are single
// conditional UPDATE statements so concurrent checkout attempts race safely
// in the database, never in process memory.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the query surface the stores need. Satisfied by *pgxpool.Pool,
// pgx.Tx, and pgxmock pools in tests.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
