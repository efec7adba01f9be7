package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jonathan/jobpilot/internal/types"
)

// Lever reads the public postings API of configured company accounts.
// Like greenhouse, these are direct career pages.
type Lever struct {
	companies []LeverCompany
	baseURL   string
	limiter   *rate.Limiter
}

// LeverCompany identifies one account under api.lever.co/v0/postings.
type LeverCompany struct {
	Slug string
	Name string
}

// NewLever builds the adapter for the given accounts.
func NewLever(companies []LeverCompany) *Lever {
	return &Lever{
		companies: companies,
		baseURL:   "https://api.lever.co/v0/postings",
		limiter:   rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
}

func (l *Lever) Name() string       { return "lever" }
func (l *Lever) Priority() Priority { return PriorityCareerPage }

func (l *Lever) ManualSearchURL(_ Query) string {
	if len(l.companies) == 0 {
		return "https://jobs.lever.co"
	}
	return "https://jobs.lever.co/" + l.companies[0].Slug
}

// leverPosting mirrors the fields of the postings API response we consume.
type leverPosting struct {
	Text       string `json:"text"`
	HostedURL  string `json:"hostedUrl"`
	Categories struct {
		Location string `json:"location"`
	} `json:"categories"`
	DescriptionPlain string `json:"descriptionPlain"`
	Lists            []struct {
		Text    string `json:"text"`
		Content string `json:"content"`
	} `json:"lists"`
}

// Search walks every configured account, keeping postings whose text matches
// a query keyword. Requirement lists come straight from the posting's
// "Requirements"/"Qualifications" sections when present.
func (l *Lever) Search(ctx context.Context, q Query) ([]types.Posting, error) {
	var (
		out     []types.Posting
		lastErr error
	)
	now := time.Now()

	for _, co := range l.companies {
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
		postingsURL := fmt.Sprintf("%s/%s?mode=json", l.baseURL, url.PathEscape(co.Slug))
		body, err := fetch(ctx, l.Name(), l.limiter, postingsURL)
		if err != nil {
			lastErr = err
			continue
		}

		var postings []leverPosting
		if err := json.Unmarshal(body, &postings); err != nil {
			lastErr = parseError(l.Name(), err)
			continue
		}

		for _, p := range postings {
			if !matchesKeywords(p.Text+" "+p.DescriptionPlain, q.Keywords) {
				continue
			}
			out = append(out, types.Posting{
				Title:        strings.TrimSpace(p.Text),
				Company:      co.Name,
				Location:     p.Categories.Location,
				Description:  p.DescriptionPlain,
				Requirements: leverRequirements(p),
				URL:          p.HostedURL,
			})
			if q.Limit > 0 && len(out) >= q.Limit {
				break
			}
		}
	}

	if len(out) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return stamp(out, l.Name(), now), nil
}

// leverRequirements prefers the posting's own requirement lists, falling back
// to mining the plain description.
func leverRequirements(p leverPosting) []string {
	var out []string
	for _, list := range p.Lists {
		lower := strings.ToLower(list.Text)
		if !strings.Contains(lower, "requirement") && !strings.Contains(lower, "qualification") {
			continue
		}
		out = append(out, htmlListItems(list.Content)...)
	}
	if len(out) == 0 {
		out = extractRequirementLines(p.DescriptionPlain)
	}
	return out
}
