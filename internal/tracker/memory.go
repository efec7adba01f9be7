package tracker

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/jobpilot/internal/types"
)

// Memory is the in-process Store used when no database is configured and in
// unit tests. One mutex guards the check-then-create sequence, which is what
// makes concurrent Begin calls for the same pair resolve to exactly one
// winner.
type Memory struct {
	mu       sync.Mutex
	attempts map[uuid.UUID]types.ApplicationAttempt
	// byPair keeps attempt ids per pair in creation order.
	byPair  map[string][]uuid.UUID
	history map[uuid.UUID][]types.Transition
}

// NewMemory builds an empty store.
func NewMemory() *Memory {
	return &Memory{
		attempts: make(map[uuid.UUID]types.ApplicationAttempt),
		byPair:   make(map[string][]uuid.UUID),
		history:  make(map[uuid.UUID][]types.Transition),
	}
}

func pairKey(postingID, profileID string) string {
	return postingID + "|" + profileID
}

func (m *Memory) CreateAttempt(_ context.Context, attempt types.ApplicationAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := pairKey(attempt.PostingID, attempt.ProfileID)
	for _, id := range m.byPair[key] {
		prior := m.attempts[id]
		if prior.Superseded {
			continue
		}
		if prior.State.Blocking() {
			return fmt.Errorf("%w: attempt %s is %s", ErrDuplicateApplication, prior.ID, prior.State)
		}
	}

	m.attempts[attempt.ID] = attempt
	m.byPair[key] = append(m.byPair[key], attempt.ID)
	m.history[attempt.ID] = append(m.history[attempt.ID], types.Transition{
		AttemptID: attempt.ID,
		From:      types.StatePending,
		To:        types.StatePending,
		Reason:    "created",
		At:        attempt.CreatedAt,
	})
	return nil
}

func (m *Memory) UpdateAttempt(_ context.Context, id uuid.UUID, state types.AttemptState, reason string, attemptCount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	attempt, ok := m.attempts[id]
	if !ok {
		return ErrAttemptNotFound
	}

	now := time.Now().UTC()
	m.history[id] = append(m.history[id], types.Transition{
		AttemptID: id,
		From:      attempt.State,
		To:        state,
		Reason:    reason,
		At:        now,
	})

	attempt.State = state
	attempt.AttemptCount = attemptCount
	attempt.UpdatedAt = now
	if state == types.StateFailed || state == types.StateManualRequired {
		attempt.LastError = reason
	}
	m.attempts[id] = attempt
	return nil
}

func (m *Memory) MarkSuperseded(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	attempt, ok := m.attempts[id]
	if !ok {
		return ErrAttemptNotFound
	}
	attempt.Superseded = true
	attempt.UpdatedAt = time.Now().UTC()
	m.attempts[id] = attempt
	m.history[id] = append(m.history[id], types.Transition{
		AttemptID: id,
		From:      attempt.State,
		To:        attempt.State,
		Reason:    "superseded by manual override",
		At:        attempt.UpdatedAt,
	})
	return nil
}

func (m *Memory) GetAttempt(_ context.Context, id uuid.UUID) (types.ApplicationAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	attempt, ok := m.attempts[id]
	if !ok {
		return types.ApplicationAttempt{}, ErrAttemptNotFound
	}
	return attempt, nil
}

func (m *Memory) FindAttempt(_ context.Context, postingID, profileID string) (types.ApplicationAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := m.byPair[pairKey(postingID, profileID)]
	if len(ids) == 0 {
		return types.ApplicationAttempt{}, ErrAttemptNotFound
	}
	return m.attempts[ids[len(ids)-1]], nil
}

func (m *Memory) History(_ context.Context, id uuid.UUID) ([]types.Transition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	history := make([]types.Transition, len(m.history[id]))
	copy(history, m.history[id])
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].At.Before(history[j].At)
	})
	return history, nil
}

func (m *Memory) CountByState(_ context.Context) (map[types.AttemptState]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := make(map[types.AttemptState]int)
	for _, attempt := range m.attempts {
		counts[attempt.State]++
	}
	return counts, nil
}
