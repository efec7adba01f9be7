package sources

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/jonathan/jobpilot/internal/types"
)

// LinkedIn scrapes the unauthenticated guest search page. LinkedIn walls off
// most automated access, so this adapter is the most likely to return a
// blocked result; its manual search URL is the primary fallback the
// aggregator surfaces.
type LinkedIn struct {
	baseURL string
	limiter *rate.Limiter
}

// NewLinkedIn builds the adapter. Three seconds between requests; linkedin
// bans faster clients quickly.
func NewLinkedIn() *LinkedIn {
	return &LinkedIn{
		baseURL: "https://www.linkedin.com",
		limiter: rate.NewLimiter(rate.Every(3*time.Second), 1),
	}
}

func (l *LinkedIn) Name() string       { return "linkedin" }
func (l *LinkedIn) Priority() Priority { return PriorityNetworkBoard }

func (l *LinkedIn) ManualSearchURL(q Query) string {
	return fmt.Sprintf("%s/jobs/search/?keywords=%s&location=%s",
		l.baseURL, url.QueryEscape(q.Terms()), url.QueryEscape(q.Location))
}

// guestSearchURL is the HTML fragment endpoint the guest UI pages through.
func (l *LinkedIn) guestSearchURL(q Query) string {
	return fmt.Sprintf("%s/jobs-guest/jobs/api/seeMoreJobPostings/search?keywords=%s&location=%s&start=0",
		l.baseURL, url.QueryEscape(q.Terms()), url.QueryEscape(q.Location))
}

// Search fetches one guest results fragment and extracts job cards.
func (l *LinkedIn) Search(ctx context.Context, q Query) ([]types.Posting, error) {
	body, err := fetch(ctx, l.Name(), l.limiter, l.guestSearchURL(q))
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, parseError(l.Name(), err)
	}

	now := time.Now()
	var out []types.Posting

	cards := doc.Find("div.base-card, li div.base-search-card")
	cards.EachWithBreak(func(_ int, card *goquery.Selection) bool {
		title := cleanText(card.Find("h3.base-search-card__title, h3[class*='title']").First().Text())
		company := cleanText(card.Find("h4.base-search-card__subtitle, a[class*='subtitle'], h4[class*='subtitle']").First().Text())
		location := cleanText(card.Find("span.job-search-card__location, span[class*='location']").First().Text())

		href, _ := card.Find("a.base-card__full-link, a[href]").First().Attr("href")
		if title == "" || company == "" || href == "" {
			return true
		}
		if location == "" {
			location = q.Location
		}

		out = append(out, types.Posting{
			Title:    title,
			Company:  company,
			Location: location,
			URL:      href,
		})
		return q.Limit <= 0 || len(out) < q.Limit
	})

	if len(out) == 0 && cards.Length() > 0 {
		return nil, parseError(l.Name(), fmt.Errorf("found %d cards but extracted no postings", cards.Length()))
	}
	return stamp(out, l.Name(), now), nil
}
