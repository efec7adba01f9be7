package types

// MatchMode identifies which scoring path produced a MatchScore. Scores from
// different modes live on different scales and must never be compared
// directly.
type MatchMode string

const (
	// ModeSemantic blends embedding similarity with skill and experience scores.
	ModeSemantic MatchMode = "semantic"
	// ModeKeyword is the degraded path used when no embedding backend is available.
	ModeKeyword MatchMode = "keyword"
)

// MatchScore holds the per-posting scoring breakdown for one profile.
type MatchScore struct {
	PostingID string    `json:"posting_id"`
	ProfileID string    `json:"profile_id"`
	// Semantic is nil in keyword mode.
	Semantic   *float64  `json:"semantic_score"`
	Skill      float64   `json:"skill_score"`
	Experience float64   `json:"experience_score"`
	Composite  float64   `json:"composite"`
	Mode       MatchMode `json:"mode"`
	// ContentKey binds the score to the exact posting and profile content it
	// was computed from; a mismatch means the cached score is stale.
	ContentKey string `json:"content_key"`
}

// ContentKey combines posting and profile content hashes into the cache key
// component that invalidates on any mutation of either side.
func ContentKey(postingHash, profileHash string) string {
	return postingHash + ":" + profileHash
}
