package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jonathan/jobpilot/internal/tracker"
	"github.com/jonathan/jobpilot/internal/types"
)

const uniqueViolation = "23505"

// AttemptStore is the PostgreSQL tracker.Store. Pair uniqueness is enforced
// by the partial unique index on blocking attempts, so two racing creations
// resolve inside the database: one insert lands, the other gets a unique
// violation.
type AttemptStore struct {
	db *DB
}

// Attempts returns the attempt store backed by this database.
func (db *DB) Attempts() *AttemptStore {
	return &AttemptStore{db: db}
}

var _ tracker.Store = (*AttemptStore)(nil)

// CreateAttempt inserts a pending attempt together with its creation
// transition. A blocking attempt for the same pair surfaces as
// tracker.ErrDuplicateApplication.
func (s *AttemptStore) CreateAttempt(ctx context.Context, attempt types.ApplicationAttempt) error {
	tx, err := s.db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO application_attempts (id, posting_id, profile_id, state, platform_kind, attempt_count, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		attempt.ID, attempt.PostingID, attempt.ProfileID, attempt.State, attempt.PlatformKind,
		attempt.AttemptCount, attempt.CreatedAt, attempt.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return tracker.ErrDuplicateApplication
		}
		return fmt.Errorf("failed to create attempt: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO attempt_transitions (attempt_id, from_state, to_state, reason, at)
		 VALUES ($1, $2, $3, $4, $5)`,
		attempt.ID, attempt.State, attempt.State, "created", attempt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record creation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit attempt: %w", err)
	}
	return nil
}

// UpdateAttempt moves an attempt to a new state and appends the transition.
func (s *AttemptStore) UpdateAttempt(ctx context.Context, id uuid.UUID, state types.AttemptState, reason string, attemptCount int) error {
	tx, err := s.db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var from types.AttemptState
	err = tx.QueryRow(ctx,
		`SELECT state FROM application_attempts WHERE id = $1 FOR UPDATE`, id,
	).Scan(&from)
	if err != nil {
		if err == pgx.ErrNoRows {
			return tracker.ErrAttemptNotFound
		}
		return fmt.Errorf("failed to lock attempt: %w", err)
	}

	now := time.Now().UTC()
	lastError := ""
	if state == types.StateFailed || state == types.StateManualRequired {
		lastError = reason
	}
	_, err = tx.Exec(ctx,
		`UPDATE application_attempts
		 SET state = $1, attempt_count = $2, last_error = NULLIF($3, ''), updated_at = $4
		 WHERE id = $5`,
		state, attemptCount, lastError, now, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update attempt: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO attempt_transitions (attempt_id, from_state, to_state, reason, at)
		 VALUES ($1, $2, $3, $4, $5)`,
		id, from, state, reason, now,
	)
	if err != nil {
		return fmt.Errorf("failed to record transition: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transition: %w", err)
	}
	return nil
}

// GetAttempt retrieves an attempt by id.
func (s *AttemptStore) GetAttempt(ctx context.Context, id uuid.UUID) (types.ApplicationAttempt, error) {
	return s.scanAttempt(ctx,
		`SELECT id, posting_id, profile_id, state, platform_kind, attempt_count, COALESCE(last_error, ''), superseded, created_at, updated_at
		 FROM application_attempts WHERE id = $1`,
		id,
	)
}

// FindAttempt returns the newest attempt for a pair.
func (s *AttemptStore) FindAttempt(ctx context.Context, postingID, profileID string) (types.ApplicationAttempt, error) {
	return s.scanAttempt(ctx,
		`SELECT id, posting_id, profile_id, state, platform_kind, attempt_count, COALESCE(last_error, ''), superseded, created_at, updated_at
		 FROM application_attempts WHERE posting_id = $1 AND profile_id = $2
		 ORDER BY created_at DESC LIMIT 1`,
		postingID, profileID,
	)
}

func (s *AttemptStore) scanAttempt(ctx context.Context, query string, args ...any) (types.ApplicationAttempt, error) {
	var a types.ApplicationAttempt
	err := s.db.pool.QueryRow(ctx, query, args...).Scan(
		&a.ID, &a.PostingID, &a.ProfileID, &a.State, &a.PlatformKind,
		&a.AttemptCount, &a.LastError, &a.Superseded, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return types.ApplicationAttempt{}, tracker.ErrAttemptNotFound
		}
		return types.ApplicationAttempt{}, fmt.Errorf("failed to get attempt: %w", err)
	}
	return a, nil
}

// MarkSuperseded flags a terminal attempt as overridden so it leaves the
// blocking index, and audits the override.
func (s *AttemptStore) MarkSuperseded(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var state types.AttemptState
	err = tx.QueryRow(ctx,
		`UPDATE application_attempts SET superseded = TRUE, updated_at = NOW()
		 WHERE id = $1 RETURNING state`,
		id,
	).Scan(&state)
	if err != nil {
		if err == pgx.ErrNoRows {
			return tracker.ErrAttemptNotFound
		}
		return fmt.Errorf("failed to supersede attempt: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO attempt_transitions (attempt_id, from_state, to_state, reason, at)
		 VALUES ($1, $2, $2, $3, NOW())`,
		id, state, "superseded by manual override",
	)
	if err != nil {
		return fmt.Errorf("failed to record override: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit override: %w", err)
	}
	return nil
}

// History returns an attempt's transitions in wall-clock order.
func (s *AttemptStore) History(ctx context.Context, id uuid.UUID) ([]types.Transition, error) {
	rows, err := s.db.pool.Query(ctx,
		`SELECT attempt_id, from_state, to_state, COALESCE(reason, ''), at
		 FROM attempt_transitions WHERE attempt_id = $1 ORDER BY at, id`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transitions: %w", err)
	}
	defer rows.Close()

	var history []types.Transition
	for rows.Next() {
		var tr types.Transition
		if err := rows.Scan(&tr.AttemptID, &tr.From, &tr.To, &tr.Reason, &tr.At); err != nil {
			return nil, fmt.Errorf("failed to scan transition: %w", err)
		}
		history = append(history, tr)
	}
	return history, nil
}

// CountByState counts attempts grouped by state.
func (s *AttemptStore) CountByState(ctx context.Context) (map[types.AttemptState]int, error) {
	rows, err := s.db.pool.Query(ctx,
		`SELECT state, COUNT(*) FROM application_attempts GROUP BY state`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count attempts: %w", err)
	}
	defer rows.Close()

	counts := make(map[types.AttemptState]int)
	for rows.Next() {
		var state types.AttemptState
		var n int
		if err := rows.Scan(&state, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[state] = n
	}
	return counts, nil
}
