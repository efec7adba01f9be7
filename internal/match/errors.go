// Package match scores a candidate profile against postings, preferring
// embedding similarity and degrading transparently to keyword overlap when
// no embedding backend is available.
package match

import "errors"

// ErrProfileIncomplete means the profile has no usable content. The match
// request fails without computing scores; the profile must be fixed upstream.
var ErrProfileIncomplete = errors.New("profile incomplete")
