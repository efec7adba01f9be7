// Package dedup merges postings that describe the same logical job across
// sources and establishes the deterministic base order downstream ranking
// ties break on.
package dedup

import (
	"sort"

	"github.com/jonathan/jobpilot/internal/sources"
	"github.com/jonathan/jobpilot/internal/types"
)

// PriorityOrder maps a source name to its merge priority. Lower wins
// conflicting fields. It is an explicit value passed into Merge, not a
// module-level constant, so tests and callers can substitute orderings.
type PriorityOrder map[string]sources.Priority

// DefaultPriorities covers the built-in adapters: direct career pages beat
// job boards, which beat aggregator boards, which beat network boards.
func DefaultPriorities() PriorityOrder {
	return PriorityOrder{
		"greenhouse": sources.PriorityCareerPage,
		"lever":      sources.PriorityCareerPage,
		"indeed":     sources.PriorityJobBoard,
		"jobstreet":  sources.PriorityAggregatorBoard,
		"linkedin":   sources.PriorityNetworkBoard,
	}
}

// priorityOf defaults unknown sources to the bottom of the order.
func (po PriorityOrder) priorityOf(source string) sources.Priority {
	if p, ok := po[source]; ok {
		return p
	}
	return sources.PriorityNetworkBoard + 1
}

// Merge groups postings by canonical id and collapses each group into one
// posting. Field conflicts resolve to the highest-priority source; missing
// fields fill in from lower-priority duplicates; requirements take the set
// union with the winner's items first. Merge is deterministic and
// idempotent: merging already-merged output is a no-op.
func Merge(postings []types.Posting, priorities PriorityOrder) []types.Posting {
	groups := make(map[string][]types.Posting)
	for _, p := range postings {
		if p.ID == "" {
			p.DeriveID()
		}
		groups[p.ID] = append(groups[p.ID], p)
	}

	out := make([]types.Posting, 0, len(groups))
	for _, group := range groups {
		out = append(out, mergeGroup(group, priorities))
	}

	// Stable insertion order: first-seen fetch time, ties by source
	// priority, then id so equal inputs always produce equal output.
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].FetchedAt.Equal(out[j].FetchedAt) {
			return out[i].FetchedAt.Before(out[j].FetchedAt)
		}
		pi, pj := priorities.priorityOf(out[i].Source), priorities.priorityOf(out[j].Source)
		if pi != pj {
			return pi < pj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// mergeGroup collapses duplicates of one logical job.
func mergeGroup(group []types.Posting, priorities PriorityOrder) types.Posting {
	if len(group) == 1 {
		return group[0]
	}

	// Sort the group by priority, then earliest fetch, so the winner is
	// deterministic regardless of input order.
	sort.SliceStable(group, func(i, j int) bool {
		pi, pj := priorities.priorityOf(group[i].Source), priorities.priorityOf(group[j].Source)
		if pi != pj {
			return pi < pj
		}
		return group[i].FetchedAt.Before(group[j].FetchedAt)
	})

	merged := group[0]
	seen := make(map[string]bool, len(merged.Requirements))
	for _, r := range merged.Requirements {
		seen[r] = true
	}

	for _, p := range group[1:] {
		if merged.Location == "" {
			merged.Location = p.Location
		}
		if merged.Description == "" {
			merged.Description = p.Description
		}
		for _, r := range p.Requirements {
			if !seen[r] {
				seen[r] = true
				merged.Requirements = append(merged.Requirements, r)
			}
		}
		// Earliest sighting wins the fetch timestamp.
		if p.FetchedAt.Before(merged.FetchedAt) {
			merged.FetchedAt = p.FetchedAt
		}
	}
	return merged
}
