// Package tracker records application attempts and enforces the at-most-one
// application invariant per (posting, profile) pair.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/jobpilot/internal/types"
)

// ErrDuplicateApplication means the pair already has a blocking attempt:
// one in flight, one submitted, or one handed to a human. Rejected
// synchronously; not retryable.
var ErrDuplicateApplication = errors.New("duplicate application")

// ErrAttemptNotFound means no attempt exists for the given id.
var ErrAttemptNotFound = errors.New("attempt not found")

// Store persists attempts and their transition history. CreateAttempt must
// be atomic with respect to concurrent calls for the same pair: exactly one
// of two racing creations succeeds.
type Store interface {
	// CreateAttempt inserts a new pending attempt, failing with
	// ErrDuplicateApplication when a blocking attempt exists for the pair.
	CreateAttempt(ctx context.Context, attempt types.ApplicationAttempt) error
	// UpdateAttempt writes a state change and appends it to the history.
	UpdateAttempt(ctx context.Context, id uuid.UUID, state types.AttemptState, reason string, attemptCount int) error
	GetAttempt(ctx context.Context, id uuid.UUID) (types.ApplicationAttempt, error)
	// FindAttempt returns the newest attempt for a pair.
	FindAttempt(ctx context.Context, postingID, profileID string) (types.ApplicationAttempt, error)
	// MarkSuperseded flags a terminal attempt as overridden by the user so
	// it stops blocking new attempts, and records the override in its
	// history.
	MarkSuperseded(ctx context.Context, id uuid.UUID) error
	// History returns an attempt's transitions in wall-clock order.
	History(ctx context.Context, id uuid.UUID) ([]types.Transition, error)
	// CountByState counts attempts grouped by state.
	CountByState(ctx context.Context) (map[types.AttemptState]int, error)
}

// Tracker wraps a Store with the lifecycle rules.
type Tracker struct {
	store Store
}

// New builds a tracker over the given store.
func New(store Store) *Tracker {
	return &Tracker{store: store}
}

// Begin registers a fresh attempt for the pair. A pair whose newest attempt
// is non-terminal, Submitted, or ManualRequired is rejected with
// ErrDuplicateApplication; only a Failed attempt frees the pair.
func (t *Tracker) Begin(ctx context.Context, postingID, profileID, platformKind string) (types.ApplicationAttempt, error) {
	now := time.Now().UTC()
	attempt := types.ApplicationAttempt{
		ID:           uuid.New(),
		PostingID:    postingID,
		ProfileID:    profileID,
		State:        types.StatePending,
		PlatformKind: platformKind,
		AttemptCount: 1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := t.store.CreateAttempt(ctx, attempt); err != nil {
		return types.ApplicationAttempt{}, err
	}
	return attempt, nil
}

// Transition moves an attempt to a new state with an audited reason.
func (t *Tracker) Transition(ctx context.Context, attempt *types.ApplicationAttempt, to types.AttemptState, reason string) error {
	if attempt.State.Terminal() {
		return fmt.Errorf("attempt %s is already terminal in state %s", attempt.ID, attempt.State)
	}
	if err := t.store.UpdateAttempt(ctx, attempt.ID, to, reason, attempt.AttemptCount); err != nil {
		return fmt.Errorf("failed to record transition to %s: %w", to, err)
	}
	attempt.State = to
	attempt.UpdatedAt = time.Now().UTC()
	if to == types.StateFailed || to == types.StateManualRequired {
		attempt.LastError = reason
	}
	return nil
}

// ForceNew supersedes a ManualRequired attempt after an explicit user
// override, freeing the pair for a fresh automatic attempt. The old attempt
// keeps its terminal state; the override is recorded in its history.
func (t *Tracker) ForceNew(ctx context.Context, postingID, profileID, platformKind string) (types.ApplicationAttempt, error) {
	prior, err := t.store.FindAttempt(ctx, postingID, profileID)
	if err != nil && !errors.Is(err, ErrAttemptNotFound) {
		return types.ApplicationAttempt{}, err
	}
	if err == nil {
		if prior.State == types.StateSubmitted {
			return types.ApplicationAttempt{}, fmt.Errorf("%w: already submitted", ErrDuplicateApplication)
		}
		if !prior.State.Terminal() {
			return types.ApplicationAttempt{}, fmt.Errorf("%w: attempt in flight", ErrDuplicateApplication)
		}
		if prior.State == types.StateManualRequired && !prior.Superseded {
			if err := t.store.MarkSuperseded(ctx, prior.ID); err != nil {
				return types.ApplicationAttempt{}, fmt.Errorf("failed to record override: %w", err)
			}
		}
	}
	return t.Begin(ctx, postingID, profileID, platformKind)
}

// History exposes an attempt's audit log.
func (t *Tracker) History(ctx context.Context, id uuid.UUID) ([]types.Transition, error) {
	return t.store.History(ctx, id)
}

// CountByState reports attempts per state for the dashboard read surface.
func (t *Tracker) CountByState(ctx context.Context) (map[types.AttemptState]int, error) {
	return t.store.CountByState(ctx)
}

// Find returns the newest attempt for a pair.
func (t *Tracker) Find(ctx context.Context, postingID, profileID string) (types.ApplicationAttempt, error) {
	return t.store.FindAttempt(ctx, postingID, profileID)
}
