package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalURL_StripsTrackingParams(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{
			"utm params removed",
			"https://boards.greenhouse.io/acme/jobs/123?utm_source=linkedin&utm_campaign=q3",
			"https://boards.greenhouse.io/acme/jobs/123",
		},
		{
			"gclid removed",
			"https://jobs.lever.co/acme/abc?gclid=xyz",
			"https://jobs.lever.co/acme/abc",
		},
		{
			"meaningful params kept and sorted",
			"https://example.com/jobs?page=2&dept=eng",
			"https://example.com/jobs?dept=eng&page=2",
		},
		{
			"host lowercased fragment dropped",
			"https://Example.COM/jobs/1#apply",
			"https://example.com/jobs/1",
		},
		{
			"trailing slash trimmed",
			"https://example.com/jobs/1/",
			"https://example.com/jobs/1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CanonicalURL(tt.raw))
		})
	}
}

func TestCanonicalID_PureFunction(t *testing.T) {
	a := CanonicalID("Acme Corp", "Staff Engineer", "https://acme.com/jobs/1?utm_source=a")
	b := CanonicalID("acme corp", "staff engineer", "https://acme.com/jobs/1?utm_source=b")
	assert.Equal(t, a, b, "same job via different tracking links must share an id")

	c := CanonicalID("Acme Corp", "Senior Engineer", "https://acme.com/jobs/1")
	assert.NotEqual(t, a, c, "different titles are different jobs")
	assert.Len(t, a, 16)
}

func TestPosting_ContentHash(t *testing.T) {
	p := Posting{
		Title:        "Engineer",
		Description:  "build things",
		Requirements: []string{"go", "sql"},
	}
	h1 := p.ContentHash()
	assert.Equal(t, h1, p.ContentHash(), "hash must be stable")

	p.Description = "build other things"
	assert.NotEqual(t, h1, p.ContentHash(), "content change must change the hash")
}

func TestPosting_ContentHash_IgnoresNonContentFields(t *testing.T) {
	p := Posting{Title: "Engineer", Description: "d", Requirements: []string{"go"}}
	h := p.ContentHash()

	p.Source = "lever"
	p.FetchedAt = time.Now()
	assert.Equal(t, h, p.ContentHash())
}
