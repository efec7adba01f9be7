package types

import (
	"time"

	"github.com/google/uuid"
)

// AttemptState is the position of an application attempt in its lifecycle.
type AttemptState string

const (
	StatePending        AttemptState = "pending"
	StateFormDiscovered AttemptState = "form_discovered"
	StateFieldsMapped   AttemptState = "fields_mapped"
	StateFieldsFilled   AttemptState = "fields_filled"
	StateAwaitingReview AttemptState = "awaiting_review"
	StateSubmitted      AttemptState = "submitted"
	StateManualRequired AttemptState = "manual_required"
	StateFailed         AttemptState = "failed"
)

// Terminal reports whether the state ends the attempt's lifecycle.
func (s AttemptState) Terminal() bool {
	switch s {
	case StateSubmitted, StateManualRequired, StateFailed:
		return true
	}
	return false
}

// Blocking reports whether an attempt in this state blocks a new attempt for
// the same (posting, profile) pair. Submitted blocks because the application
// went out; ManualRequired blocks because the application was handed to a
// human and an automatic retry risks a double submission. Only Failed
// unblocks.
func (s AttemptState) Blocking() bool {
	return s != StateFailed
}

// ApplicationAttempt is the unit of work representing one application to one
// posting for one profile. At most one blocking attempt exists per
// (posting_id, profile_id) pair at any time.
type ApplicationAttempt struct {
	ID           uuid.UUID    `json:"id"`
	PostingID    string       `json:"posting_id"`
	ProfileID    string       `json:"profile_id"`
	State        AttemptState `json:"state"`
	PlatformKind string       `json:"platform_kind"`
	AttemptCount int          `json:"attempt_count"`
	LastError    string       `json:"last_error,omitempty"`
	// Superseded marks a ManualRequired attempt the user explicitly
	// overrode; it stops blocking new attempts but keeps its history.
	Superseded bool      `json:"superseded,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Transition is one audited state change for an attempt.
type Transition struct {
	AttemptID uuid.UUID    `json:"attempt_id"`
	From      AttemptState `json:"from"`
	To        AttemptState `json:"to"`
	Reason    string       `json:"reason"`
	At        time.Time    `json:"at"`
}
