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

// Greenhouse reads the public board API of configured company boards. These
// are direct career pages, so anything found here carries the top merge
// priority.
type Greenhouse struct {
	companies []GreenhouseCompany
	baseURL   string
	limiter   *rate.Limiter
}

// GreenhouseCompany identifies one board under boards-api.greenhouse.io.
type GreenhouseCompany struct {
	Slug string
	Name string
}

// NewGreenhouse builds the adapter for the given boards. One request per two
// seconds, matching the board API's informal tolerance.
func NewGreenhouse(companies []GreenhouseCompany) *Greenhouse {
	return &Greenhouse{
		companies: companies,
		baseURL:   "https://boards-api.greenhouse.io/v1/boards",
		limiter:   rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
}

func (g *Greenhouse) Name() string       { return "greenhouse" }
func (g *Greenhouse) Priority() Priority { return PriorityCareerPage }

// ManualSearchURL points at the first configured board; greenhouse has no
// cross-board search surface.
func (g *Greenhouse) ManualSearchURL(_ Query) string {
	if len(g.companies) == 0 {
		return "https://boards.greenhouse.io"
	}
	return "https://boards.greenhouse.io/" + g.companies[0].Slug
}

// greenhouseJob mirrors the fields of the board API response we consume.
type greenhouseJob struct {
	Title       string `json:"title"`
	AbsoluteURL string `json:"absolute_url"`
	Location    struct {
		Name string `json:"name"`
	} `json:"location"`
	Content string `json:"content"`
}

type greenhouseBoard struct {
	Jobs []greenhouseJob `json:"jobs"`
}

// Search walks every configured board and keeps jobs whose title matches any
// query keyword. One unreachable board does not fail the others; the adapter
// only errors when no board produced anything and at least one failed.
func (g *Greenhouse) Search(ctx context.Context, q Query) ([]types.Posting, error) {
	var (
		out     []types.Posting
		lastErr error
	)
	now := time.Now()

	for _, co := range g.companies {
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
		boardURL := fmt.Sprintf("%s/%s/jobs?content=true", g.baseURL, url.PathEscape(co.Slug))
		body, err := fetch(ctx, g.Name(), g.limiter, boardURL)
		if err != nil {
			lastErr = err
			continue
		}

		var board greenhouseBoard
		if err := json.Unmarshal(body, &board); err != nil {
			lastErr = parseError(g.Name(), err)
			continue
		}

		for _, job := range board.Jobs {
			if !matchesKeywords(job.Title+" "+job.Content, q.Keywords) {
				continue
			}
			out = append(out, types.Posting{
				Title:        strings.TrimSpace(job.Title),
				Company:      co.Name,
				Location:     job.Location.Name,
				Description:  stripTags(job.Content),
				Requirements: extractRequirementLines(stripTags(job.Content)),
				URL:          job.AbsoluteURL,
			})
			if q.Limit > 0 && len(out) >= q.Limit {
				break
			}
		}
	}

	if len(out) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return stamp(out, g.Name(), now), nil
}
