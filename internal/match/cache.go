package match

import (
	"sync"

	"github.com/jonathan/jobpilot/internal/types"
)

// Cache stores computed scores keyed by (profile, posting, content). A score
// is only valid for the exact content hashes it was computed from; any
// mutation of either side misses the cache and recomputes.
type Cache interface {
	Get(profileID, postingID, contentKey string) (types.MatchScore, bool)
	Put(score types.MatchScore)
}

type cacheKey struct {
	profileID  string
	postingID  string
	contentKey string
}

// MemoryCache is the in-process Cache used when no database is configured.
type MemoryCache struct {
	mu sync.RWMutex
	m  map[cacheKey]types.MatchScore
}

// NewMemoryCache builds an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{m: make(map[cacheKey]types.MatchScore)}
}

func (c *MemoryCache) Get(profileID, postingID, contentKey string) (types.MatchScore, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	score, ok := c.m[cacheKey{profileID, postingID, contentKey}]
	return score, ok
}

func (c *MemoryCache) Put(score types.MatchScore) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[cacheKey{score.ProfileID, score.PostingID, score.ContentKey}] = score
}
