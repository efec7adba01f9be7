package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/jobpilot/internal/types"
)

// UpsertPostings writes the merged posting set, updating content fields for
// ids already seen in an earlier run.
func (db *DB) UpsertPostings(ctx context.Context, postings []types.Posting) error {
	for _, p := range postings {
		_, err := db.pool.Exec(ctx,
			`INSERT INTO postings (id, title, company, location, description, requirements, url, source, fetched_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 ON CONFLICT (id) DO UPDATE SET
			     title = $2, company = $3, location = $4, description = $5,
			     requirements = $6, url = $7, source = $8, updated_at = NOW()`,
			p.ID, p.Title, p.Company, p.Location, p.Description, p.Requirements, p.URL, p.Source, p.FetchedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert posting %s: %w", p.ID, err)
		}
	}
	return nil
}

// GetPosting retrieves a posting by its canonical id. Returns nil when the
// posting is unknown.
func (db *DB) GetPosting(ctx context.Context, id string) (*types.Posting, error) {
	var p types.Posting
	err := db.pool.QueryRow(ctx,
		`SELECT id, title, company, COALESCE(location, ''), COALESCE(description, ''), requirements, url, source, fetched_at
		 FROM postings WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Title, &p.Company, &p.Location, &p.Description, &p.Requirements, &p.URL, &p.Source, &p.FetchedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get posting: %w", err)
	}
	return &p, nil
}

// ListPostings retrieves recently fetched postings.
func (db *DB) ListPostings(ctx context.Context, limit int) ([]types.Posting, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, title, company, COALESCE(location, ''), COALESCE(description, ''), requirements, url, source, fetched_at
		 FROM postings ORDER BY fetched_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list postings: %w", err)
	}
	defer rows.Close()

	var postings []types.Posting
	for rows.Next() {
		var p types.Posting
		if err := rows.Scan(&p.ID, &p.Title, &p.Company, &p.Location, &p.Description, &p.Requirements, &p.URL, &p.Source, &p.FetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan posting: %w", err)
		}
		postings = append(postings, p)
	}
	return postings, nil
}
