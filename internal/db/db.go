// Package db provides PostgreSQL persistence for postings, application
// attempts, and match scores.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// schema is the full DDL, written to be safe to run on every start.
// The partial unique index enforces the at-most-one-blocking-attempt
// invariant at the storage layer: failed and superseded attempts drop out
// of the index and stop blocking the pair.
const schema = `
CREATE TABLE IF NOT EXISTS postings (
    id            TEXT PRIMARY KEY,
    title         TEXT NOT NULL,
    company       TEXT NOT NULL,
    location      TEXT,
    description   TEXT,
    requirements  TEXT[],
    url           TEXT NOT NULL,
    source        TEXT NOT NULL,
    fetched_at    TIMESTAMPTZ NOT NULL,
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS application_attempts (
    id             UUID PRIMARY KEY,
    posting_id     TEXT NOT NULL,
    profile_id     TEXT NOT NULL,
    state          TEXT NOT NULL,
    platform_kind  TEXT NOT NULL,
    attempt_count  INT NOT NULL DEFAULT 1,
    last_error     TEXT,
    superseded     BOOLEAN NOT NULL DEFAULT FALSE,
    created_at     TIMESTAMPTZ NOT NULL,
    updated_at     TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS ux_attempts_blocking
    ON application_attempts (posting_id, profile_id)
    WHERE state <> 'failed' AND NOT superseded;

CREATE INDEX IF NOT EXISTS ix_attempts_pair
    ON application_attempts (posting_id, profile_id, created_at);

CREATE TABLE IF NOT EXISTS attempt_transitions (
    id          BIGSERIAL PRIMARY KEY,
    attempt_id  UUID NOT NULL REFERENCES application_attempts(id) ON DELETE CASCADE,
    from_state  TEXT NOT NULL,
    to_state    TEXT NOT NULL,
    reason      TEXT,
    at          TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS ix_transitions_attempt
    ON attempt_transitions (attempt_id, at);

CREATE TABLE IF NOT EXISTS match_scores (
    profile_id   TEXT NOT NULL,
    posting_id   TEXT NOT NULL,
    content_key  TEXT NOT NULL,
    semantic     DOUBLE PRECISION,
    skill        DOUBLE PRECISION NOT NULL,
    experience   DOUBLE PRECISION NOT NULL,
    composite    DOUBLE PRECISION NOT NULL,
    mode         TEXT NOT NULL,
    computed_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (profile_id, posting_id)
);
`

// Migrate creates the schema when it does not exist yet.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
