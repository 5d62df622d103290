package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"circulation/internal/pkg/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

func Connect(cfg config.DBConfig) (*pgxpool.Pool, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolCfg, err := pgxpool.ParseConfig(cfg.BuildDSN())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	poolCfg.MaxConns = 25
	poolCfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	cleanup := func() {
		slog.Info("closing database pool")
		pool.Close()
	}

	return pool, cleanup, nil
}

// EnsureSchema creates the circulation tables if they do not exist yet. The
// books and borrowers tables belong to the catalog and identity
// collaborators; they are created here only so a fresh database can serve
// the existence checks and foreign keys.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}

// Schema exposes the bootstrap DDL so tests can cross-check queried columns
// against the tables they run on.
func Schema() []string {
	return schemaStatements
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS books (
		id         uuid PRIMARY KEY,
		title      text NOT NULL,
		created_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS borrowers (
		id         uuid PRIMARY KEY,
		name       text NOT NULL,
		created_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS book_copies (
		id               uuid PRIMARY KEY,
		book_id          uuid NOT NULL REFERENCES books (id),
		barcode          text NOT NULL UNIQUE,
		status           text NOT NULL,
		purchase_price   numeric(10,2) NOT NULL DEFAULT 0,
		purchased_at     timestamptz NOT NULL DEFAULT now(),
		last_maintenance timestamptz,
		created_at       timestamptz NOT NULL DEFAULT now(),
		updated_at       timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_book_copies_book_status
		ON book_copies (book_id, status)`,
	`CREATE TABLE IF NOT EXISTS loans (
		id          uuid PRIMARY KEY,
		borrower_id uuid NOT NULL REFERENCES borrowers (id),
		copy_id     uuid NOT NULL REFERENCES book_copies (id),
		borrowed_at timestamptz NOT NULL,
		due_at      timestamptz NOT NULL,
		returned_at timestamptz,
		status      text NOT NULL,
		fine        numeric(10,2) NOT NULL DEFAULT 0,
		fine_paid   boolean NOT NULL DEFAULT false,
		renewals    integer NOT NULL DEFAULT 0,
		created_at  timestamptz NOT NULL DEFAULT now(),
		updated_at  timestamptz NOT NULL DEFAULT now()
	)`,
	// Single-holder invariant at the store level: at most one un-returned
	// loan may reference a copy.
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_loans_open_copy
		ON loans (copy_id) WHERE returned_at IS NULL`,
	`CREATE INDEX IF NOT EXISTS idx_loans_borrower_status
		ON loans (borrower_id, status)`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id          uuid PRIMARY KEY,
		borrower_id uuid NOT NULL REFERENCES borrowers (id),
		book_id     uuid NOT NULL REFERENCES books (id),
		reserved_at timestamptz NOT NULL,
		notified_at timestamptz,
		status      text NOT NULL,
		created_at  timestamptz NOT NULL DEFAULT now(),
		updated_at  timestamptz NOT NULL DEFAULT now()
	)`,
	// One WAITING entry per borrower per book.
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_reservations_waiting
		ON reservations (borrower_id, book_id) WHERE status = 'waiting'`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_book_status
		ON reservations (book_id, status, reserved_at, id)`,
	`CREATE TABLE IF NOT EXISTS borrowing_rules (
		rule_key    text PRIMARY KEY,
		rule_name   text NOT NULL,
		description text NOT NULL DEFAULT '',
		rule_value  text NOT NULL,
		value_type  text NOT NULL,
		updated_at  timestamptz NOT NULL DEFAULT now()
	)`,
}
