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

// JobStreet scrapes the Singapore/SE-Asia board's search results.
type JobStreet struct {
	baseURL string
	limiter *rate.Limiter
}

// NewJobStreet builds the adapter.
func NewJobStreet() *JobStreet {
	return &JobStreet{
		baseURL: "https://www.jobstreet.com.sg",
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
}

func (j *JobStreet) Name() string       { return "jobstreet" }
func (j *JobStreet) Priority() Priority { return PriorityAggregatorBoard }

func (j *JobStreet) ManualSearchURL(q Query) string {
	return fmt.Sprintf("%s/en/job-search/job-vacancy.php?ojs=3&key=%s&location=%s",
		j.baseURL, url.QueryEscape(q.Terms()), url.QueryEscape(q.Location))
}

// Search fetches one results page and extracts article cards.
func (j *JobStreet) Search(ctx context.Context, q Query) ([]types.Posting, error) {
	body, err := fetch(ctx, j.Name(), j.limiter, j.ManualSearchURL(q))
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, parseError(j.Name(), err)
	}

	now := time.Now()
	var out []types.Posting

	doc.Find("article[class*='job'], article[class*='card']").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		title := cleanText(card.Find("h1, h2, a[class*='title']").First().Text())
		company := cleanText(card.Find("span[class*='company'], a[class*='company']").First().Text())

		href, _ := card.Find("a[href]").First().Attr("href")
		jobURL := href
		if jobURL != "" && !strings.HasPrefix(jobURL, "http") {
			jobURL = j.baseURL + jobURL
		}

		if title == "" || company == "" || jobURL == "" {
			return true
		}

		out = append(out, types.Posting{
			Title:    title,
			Company:  company,
			Location: q.Location,
			URL:      jobURL,
		})
		return q.Limit <= 0 || len(out) < q.Limit
	})

	return stamp(out, j.Name(), now), nil
}
