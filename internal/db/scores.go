package db

import (
	"context"
	"time"

	"github.com/jonathan/jobpilot/internal/match"
	"github.com/jonathan/jobpilot/internal/types"
)

// ScoreCache is the database-backed match.Cache. Scores survive process
// restarts; a stored row whose content key no longer matches simply misses,
// and the next Put overwrites it.
type ScoreCache struct {
	db      *DB
	timeout time.Duration
}

// Scores returns the score cache backed by this database.
func (db *DB) Scores() *ScoreCache {
	return &ScoreCache{db: db, timeout: 5 * time.Second}
}

var _ match.Cache = (*ScoreCache)(nil)

func (c *ScoreCache) Get(profileID, postingID, contentKey string) (types.MatchScore, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	var score types.MatchScore
	err := c.db.pool.QueryRow(ctx,
		`SELECT profile_id, posting_id, content_key, semantic, skill, experience, composite, mode
		 FROM match_scores
		 WHERE profile_id = $1 AND posting_id = $2 AND content_key = $3`,
		profileID, postingID, contentKey,
	).Scan(&score.ProfileID, &score.PostingID, &score.ContentKey,
		&score.Semantic, &score.Skill, &score.Experience, &score.Composite, &score.Mode)
	if err != nil {
		// No row, or a read failure; either way it is a miss.
		return types.MatchScore{}, false
	}
	return score, true
}

func (c *ScoreCache) Put(score types.MatchScore) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	// Best effort: a failed write only costs a recomputation later.
	_, _ = c.db.pool.Exec(ctx,
		`INSERT INTO match_scores (profile_id, posting_id, content_key, semantic, skill, experience, composite, mode)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (profile_id, posting_id) DO UPDATE SET
		     content_key = $3, semantic = $4, skill = $5, experience = $6,
		     composite = $7, mode = $8, computed_at = NOW()`,
		score.ProfileID, score.PostingID, score.ContentKey,
		score.Semantic, score.Skill, score.Experience, score.Composite, score.Mode,
	)
}
