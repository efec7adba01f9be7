package sources

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/jonathan/jobpilot/internal/types"
)

// Indeed scrapes the public search results page. Indeed aggressively rate
// limits and serves CAPTCHAs to automation, so blocked results are the
// common case and degrade to the manual search URL.
type Indeed struct {
	baseURL string
	limiter *rate.Limiter
}

// NewIndeed builds the adapter. Minimum two seconds between requests, per the
// original scraper's courtesy interval.
func NewIndeed() *Indeed {
	return &Indeed{
		baseURL: "https://www.indeed.com",
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
}

func (in *Indeed) Name() string       { return "indeed" }
func (in *Indeed) Priority() Priority { return PriorityJobBoard }

func (in *Indeed) ManualSearchURL(q Query) string {
	return fmt.Sprintf("%s/jobs?q=%s&l=%s",
		in.baseURL, url.QueryEscape(q.Terms()), url.QueryEscape(q.Location))
}

// Search fetches one results page and extracts job cards. Card markup drifts
// over time; selectors cover the two structures indeed has shipped recently.
func (in *Indeed) Search(ctx context.Context, q Query) ([]types.Posting, error) {
	body, err := fetch(ctx, in.Name(), in.limiter, in.ManualSearchURL(q))
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, parseError(in.Name(), err)
	}

	now := time.Now()
	var out []types.Posting

	cards := doc.Find("div.job_seen_beacon, div.jobsearch-SerpJobCard")
	cards.EachWithBreak(func(_ int, card *goquery.Selection) bool {
		title := cleanText(card.Find("h2.jobTitle, h2[class*='title'] a, a[data-jk]").First().Text())
		company := cleanText(card.Find("span.companyName, span[data-testid='company-name']").First().Text())
		location := cleanText(card.Find("div.companyLocation, div[data-testid='text-location']").First().Text())
		snippet := cleanText(card.Find("div.job-snippet, div[class*='snippet']").First().Text())

		href, _ := card.Find("a[href]").First().Attr("href")
		jobURL := href
		if jobURL != "" && !strings.HasPrefix(jobURL, "http") {
			jobURL = in.baseURL + jobURL
		}

		if title == "" || company == "" || jobURL == "" {
			return true
		}
		if location == "" {
			location = q.Location
		}

		out = append(out, types.Posting{
			Title:        title,
			Company:      company,
			Location:     location,
			Description:  snippet,
			Requirements: extractRequirementLines(snippet),
			URL:          jobURL,
		})
		return q.Limit <= 0 || len(out) < q.Limit
	})

	if len(out) == 0 && cards.Length() > 0 {
		return nil, parseError(in.Name(), fmt.Errorf("found %d cards but extracted no postings", cards.Length()))
	}
	return stamp(out, in.Name(), now), nil
}
