package aggregate

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/jobpilot/internal/sources"
	"github.com/jonathan/jobpilot/internal/types"
)

// fakeAdapter is a scriptable source for aggregator tests.
type fakeAdapter struct {
	name     string
	postings []types.Posting
	err      error
	delay    time.Duration
	inflight *atomic.Int32
	maxSeen  *atomic.Int32
}

func (f *fakeAdapter) Name() string                              { return f.name }
func (f *fakeAdapter) Priority() sources.Priority                { return sources.PriorityJobBoard }
func (f *fakeAdapter) ManualSearchURL(_ sources.Query) string    { return "https://example.com/search?src=" + f.name }
func (f *fakeAdapter) Search(ctx context.Context, _ sources.Query) ([]types.Posting, error) {
	if f.inflight != nil {
		cur := f.inflight.Add(1)
		for {
			seen := f.maxSeen.Load()
			if cur <= seen || f.maxSeen.CompareAndSwap(seen, cur) {
				break
			}
		}
		defer f.inflight.Add(-1)
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.postings, f.err
}

func posting(title string) types.Posting {
	p := types.Posting{Title: title, Company: "Acme", URL: "https://acme.com/" + title}
	p.DeriveID()
	return p
}

func TestRun_PartialFailureStillReturnsPostings(t *testing.T) {
	// Scenario: linkedin is blocked; the other four sources still deliver.
	adapters := []sources.Adapter{
		&fakeAdapter{name: "greenhouse", postings: []types.Posting{posting("a")}},
		&fakeAdapter{name: "lever", postings: []types.Posting{posting("b")}},
		&fakeAdapter{name: "indeed", postings: []types.Posting{posting("c")}},
		&fakeAdapter{name: "jobstreet", postings: []types.Posting{posting("d")}},
		&fakeAdapter{name: "linkedin", err: &sources.SourceError{Source: "linkedin", Kind: sources.ErrSourceBlocked}},
	}

	res := New(adapters, Options{}, nil).Run(context.Background(), sources.Query{})

	assert.Len(t, res.Postings, 4)
	require.Len(t, res.Report, 5)

	li := res.Report[4]
	assert.Equal(t, "linkedin", li.Source)
	assert.False(t, li.OK)
	assert.Equal(t, "blocked", li.Reason)
	assert.NotEmpty(t, li.ManualURL, "blocked source must leave a manual search URL behind")
}

func TestRun_ReportPreservesRegistrationOrder(t *testing.T) {
	// The slow first adapter finishes last; the report order must not care.
	adapters := []sources.Adapter{
		&fakeAdapter{name: "slow", delay: 50 * time.Millisecond, postings: []types.Posting{posting("s")}},
		&fakeAdapter{name: "fast", postings: []types.Posting{posting("f")}},
	}

	res := New(adapters, Options{}, nil).Run(context.Background(), sources.Query{})

	require.Len(t, res.Report, 2)
	assert.Equal(t, "slow", res.Report[0].Source)
	assert.Equal(t, "fast", res.Report[1].Source)
}

func TestRun_PerSourceTimeoutBecomesUnavailable(t *testing.T) {
	adapters := []sources.Adapter{
		&fakeAdapter{name: "hang", delay: time.Second},
		&fakeAdapter{name: "ok", postings: []types.Posting{posting("a")}},
	}

	res := New(adapters, Options{PerSourceTimeout: 20 * time.Millisecond, GlobalBudget: time.Second}, nil).
		Run(context.Background(), sources.Query{})

	assert.False(t, res.Report[0].OK)
	assert.Equal(t, "timeout", res.Report[0].Reason)
	assert.True(t, res.Report[1].OK)
	assert.Len(t, res.Postings, 1)
}

func TestRun_BoundsConcurrency(t *testing.T) {
	var inflight, maxSeen atomic.Int32
	var adapters []sources.Adapter
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		adapters = append(adapters, &fakeAdapter{
			name: name, delay: 20 * time.Millisecond,
			inflight: &inflight, maxSeen: &maxSeen,
		})
	}

	New(adapters, Options{MaxConcurrent: 2}, nil).Run(context.Background(), sources.Query{})

	assert.LessOrEqual(t, maxSeen.Load(), int32(2))
}

func TestRun_AllSourcesFailedStillReportsEverything(t *testing.T) {
	adapters := []sources.Adapter{
		&fakeAdapter{name: "one", err: &sources.SourceError{Source: "one", Kind: sources.ErrSourceUnavailable}},
		&fakeAdapter{name: "two", err: &sources.SourceError{Source: "two", Kind: sources.ErrSourceParse}},
	}

	res := New(adapters, Options{}, nil).Run(context.Background(), sources.Query{})

	assert.Empty(t, res.Postings)
	assert.Equal(t, "unavailable", res.Report[0].Reason)
	assert.Equal(t, "parse error", res.Report[1].Reason)
}
