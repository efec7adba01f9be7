// Package types provides type definitions for structured data used throughout the jobpilot system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
	"time"
)

// Posting represents a normalized job listing with a source-independent canonical identity.
type Posting struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	Location     string    `json:"location"`
	Description  string    `json:"description"`
	Requirements []string  `json:"requirements"`
	URL          string    `json:"url"`
	Source       string    `json:"source"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// trackingParams are query parameters that carry click attribution, not identity.
// Two URLs differing only in these point at the same job.
var trackingParams = map[string]bool{
	"gclid": true, "fbclid": true, "msclkid": true,
	"mc_cid": true, "mc_eid": true, "mkt_tok": true,
	"ref": true, "refid": true, "trackingid": true, "trk": true,
	"src": true, "source": true,
}

// CanonicalURL lowercases scheme and host, drops the fragment, and strips
// tracking query parameters. Remaining parameters are re-encoded in sorted
// key order so equal URLs always serialize identically.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if trackingParams[lk] || strings.HasPrefix(lk, "utm_") {
			q.Del(k)
		}
	}

	if len(q) == 0 {
		u.RawQuery = ""
	} else {
		keys := make([]string, 0, len(q))
		for k := range q {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		for _, k := range keys {
			for _, v := range q[k] {
				if b.Len() > 0 {
					b.WriteByte('&')
				}
				b.WriteString(url.QueryEscape(k))
				b.WriteByte('=')
				b.WriteString(url.QueryEscape(v))
			}
		}
		u.RawQuery = b.String()
	}

	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String()
}

// CanonicalID derives the posting identity from normalized company, title,
// and canonical URL. It is a pure function: the same logical job yields the
// same id regardless of which source reported it.
func CanonicalID(company, title, rawURL string) string {
	key := strings.ToLower(strings.TrimSpace(company)) + "|" +
		strings.ToLower(strings.TrimSpace(title)) + "|" +
		CanonicalURL(rawURL)
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:16]
}

// DeriveID populates p.ID from the posting's own fields.
func (p *Posting) DeriveID() {
	p.ID = CanonicalID(p.Company, p.Title, p.URL)
}

// ContentHash covers the fields that matter for match scoring. A posting
// whose hash changed invalidates any cached MatchScore computed against it.
func (p *Posting) ContentHash() string {
	h := sha256.New()
	h.Write([]byte(p.Title))
	h.Write([]byte{0})
	h.Write([]byte(p.Description))
	for _, r := range p.Requirements {
		h.Write([]byte{0})
		h.Write([]byte(r))
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
