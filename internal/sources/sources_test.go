package sources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const greenhouseBoardJSON = `{
  "jobs": [
    {
      "title": "Senior Go Engineer",
      "absolute_url": "https://boards.greenhouse.io/acme/jobs/4001",
      "location": {"name": "Remote"},
      "content": "<p>Build services.</p><ul><li>5+ years experience with Go required</li></ul>"
    },
    {
      "title": "Accountant",
      "absolute_url": "https://boards.greenhouse.io/acme/jobs/4002",
      "location": {"name": "NYC"},
      "content": "<p>Close the books.</p>"
    }
  ]
}`

func TestGreenhouse_Search_FiltersByKeyword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/acme/jobs")
		_, _ = w.Write([]byte(greenhouseBoardJSON))
	}))
	defer srv.Close()

	gh := NewGreenhouse([]GreenhouseCompany{{Slug: "acme", Name: "Acme Corp"}})
	gh.baseURL = srv.URL

	postings, err := gh.Search(context.Background(), Query{Keywords: []string{"go"}, Limit: 10})
	require.NoError(t, err)
	require.Len(t, postings, 1)

	p := postings[0]
	assert.Equal(t, "Senior Go Engineer", p.Title)
	assert.Equal(t, "Acme Corp", p.Company)
	assert.Equal(t, "greenhouse", p.Source)
	assert.NotEmpty(t, p.ID)
	assert.NotEmpty(t, p.Requirements, "requirement line should be mined from content")
	assert.False(t, p.FetchedAt.IsZero())
}

const leverPostingsJSON = `[
  {
    "text": "Backend Engineer",
    "hostedUrl": "https://jobs.lever.co/acme/abc-123",
    "categories": {"location": "Remote"},
    "descriptionPlain": "We build Go services.",
    "lists": [
      {"text": "Requirements", "content": "<li>Go</li><li>PostgreSQL</li>"}
    ]
  }
]`

func TestLever_Search_UsesRequirementLists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(leverPostingsJSON))
	}))
	defer srv.Close()

	lv := NewLever([]LeverCompany{{Slug: "acme", Name: "Acme Corp"}})
	lv.baseURL = srv.URL

	postings, err := lv.Search(context.Background(), Query{Keywords: []string{"go"}})
	require.NoError(t, err)
	require.Len(t, postings, 1)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, postings[0].Requirements)
	assert.Equal(t, "lever", postings[0].Source)
}

func TestIndeed_Search_BlockedOn403(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	in := NewIndeed()
	in.baseURL = srv.URL

	_, err := in.Search(context.Background(), Query{Keywords: []string{"go"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSourceBlocked))

	var srcErr *SourceError
	require.True(t, errors.As(err, &srcErr))
	assert.Equal(t, "indeed", srcErr.Source)
}

func TestLinkedIn_Search_BlockedOnCaptchaBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>Security Check</title></head><body>Please complete this CAPTCHA to continue.</body></html>`))
	}))
	defer srv.Close()

	li := NewLinkedIn()
	li.baseURL = srv.URL

	_, err := li.Search(context.Background(), Query{Keywords: []string{"go"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSourceBlocked))
}

func TestLinkedIn_Search_ParsesGuestCards(t *testing.T) {
	page := `<ul><li><div class="base-card">
      <a class="base-card__full-link" href="https://www.linkedin.com/jobs/view/123?refId=abc"></a>
      <h3 class="base-search-card__title"> Platform Engineer </h3>
      <h4 class="base-search-card__subtitle">Acme Corp</h4>
      <span class="job-search-card__location">Singapore</span>
    </div></li></ul>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	li := NewLinkedIn()
	li.baseURL = srv.URL

	postings, err := li.Search(context.Background(), Query{Location: "Singapore"})
	require.NoError(t, err)
	require.Len(t, postings, 1)
	assert.Equal(t, "Platform Engineer", postings[0].Title)
	assert.Equal(t, "Acme Corp", postings[0].Company)
	assert.Equal(t, "linkedin", postings[0].Source)
}

func TestIndeed_Search_ParsesCards(t *testing.T) {
	page := `<div class="job_seen_beacon">
      <h2 class="jobTitle">Data Engineer</h2>
      <span class="companyName">Initech</span>
      <div class="companyLocation">Remote</div>
      <div class="job-snippet">3+ years experience with SQL required</div>
      <a href="/viewjob?jk=99&from=serp"></a>
    </div>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	in := NewIndeed()
	in.baseURL = srv.URL

	postings, err := in.Search(context.Background(), Query{Location: "Remote"})
	require.NoError(t, err)
	require.Len(t, postings, 1)
	assert.Equal(t, "Data Engineer", postings[0].Title)
	assert.Equal(t, "Initech", postings[0].Company)
	assert.Contains(t, postings[0].URL, srv.URL)
}

func TestManualSearchURLs(t *testing.T) {
	q := Query{Keywords: []string{"go", "backend"}, Location: "Remote"}

	assert.Contains(t, NewLinkedIn().ManualSearchURL(q), "linkedin.com/jobs/search")
	assert.Contains(t, NewIndeed().ManualSearchURL(q), "q=go+backend")
	assert.Contains(t, NewJobStreet().ManualSearchURL(q), "jobstreet")
}

func TestMatchesKeywords(t *testing.T) {
	assert.True(t, matchesKeywords("Senior Go Engineer", []string{"go"}))
	assert.True(t, matchesKeywords("anything", nil))
	assert.False(t, matchesKeywords("Accountant", []string{"go", "python"}))
}
