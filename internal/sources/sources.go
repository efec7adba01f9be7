package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jonathan/jobpilot/internal/types"
)

// Priority classifies where a source sits in the dedup tie-break order.
// Direct career pages win over job boards, which win over aggregator boards,
// which win over professional-network boards.
type Priority int

const (
	PriorityCareerPage Priority = iota
	PriorityJobBoard
	PriorityAggregatorBoard
	PriorityNetworkBoard
)

// Query is one search request fanned out to every adapter.
type Query struct {
	Keywords []string
	Location string
	Limit    int
}

// Terms joins the query keywords into the free-text form most boards expect.
func (q Query) Terms() string {
	return strings.Join(q.Keywords, " ")
}

// Adapter fetches and normalizes postings from one external source. Each
// adapter owns its own rate-limit policy and must not exceed it even under
// caller pressure.
type Adapter interface {
	Name() string
	Priority() Priority
	Search(ctx context.Context, q Query) ([]types.Posting, error)
	// ManualSearchURL is surfaced downstream when the source is blocked, so
	// the user can run the same search by hand.
	ManualSearchURL(q Query) string
}

// browserUA keeps scrapers from being rejected on the default Go user agent.
const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// captchaMarkers are body substrings that indicate an anti-bot interstitial
// rather than real content.
var captchaMarkers = []string{
	"captcha",
	"are you a human",
	"unusual traffic",
	"verify you are human",
	"security check",
	"cf-challenge",
}

// client is the shared HTTP client for all adapters. Per-request deadlines
// come from the caller's context.
var client = &http.Client{Timeout: 20 * time.Second}

// fetch performs one rate-limited GET and applies the shared blocked/
// unavailable classification. The limiter wait is context-aware, so a
// cancelled aggregator deadline releases the adapter immediately.
func fetch(ctx context.Context, source string, limiter *rate.Limiter, url string) ([]byte, error) {
	if err := limiter.Wait(ctx); err != nil {
		return nil, unavailable(source, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, unavailable(source, err)
	}
	req.Header.Set("User-Agent", browserUA)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	res, err := client.Do(req)
	if err != nil {
		return nil, unavailable(source, err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusForbidden || res.StatusCode == http.StatusTooManyRequests:
		return nil, blocked(source, fmt.Errorf("status %d", res.StatusCode))
	case res.StatusCode >= 400:
		return nil, unavailable(source, fmt.Errorf("status %d", res.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, 8<<20))
	if err != nil {
		return nil, unavailable(source, err)
	}

	if looksBlocked(body) {
		return nil, blocked(source, fmt.Errorf("anti-bot interstitial detected"))
	}
	return body, nil
}

// looksBlocked sniffs the response body for CAPTCHA and challenge markers.
func looksBlocked(body []byte) bool {
	// Only sniff the head of the document; challenge pages are small and
	// job descriptions legitimately mention these words further down.
	head := strings.ToLower(string(body[:min(len(body), 4096)]))
	for _, m := range captchaMarkers {
		if strings.Contains(head, m) {
			return true
		}
	}
	return false
}

// stamp sets the source name and fetch time on every returned posting and
// derives the canonical id.
func stamp(postings []types.Posting, source string, now time.Time) []types.Posting {
	for i := range postings {
		postings[i].Source = source
		postings[i].FetchedAt = now
		postings[i].DeriveID()
	}
	return postings
}
