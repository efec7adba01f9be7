// Package apply drives application attempts through the submission state
// machine: discover the form, map profile fields, fill, pause for review,
// submit only after explicit confirmation.
package apply

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/jonathan/jobpilot/internal/logging"
	"github.com/jonathan/jobpilot/internal/platform"
	"github.com/jonathan/jobpilot/internal/tracker"
	"github.com/jonathan/jobpilot/internal/types"
)

// maxReasonLog caps transition reasons in log output; the full reason is
// still persisted on the attempt.
const maxReasonLog = 200

// Review is what a human sees before deciding whether to submit.
type Review struct {
	Posting          types.Posting
	Attempt          types.ApplicationAttempt
	Filled           []string
	Skipped          []string
	UnmappedRequired []string
}

// ConfirmFunc is the external confirmation gate. Submission never happens
// unless it returns true; an error aborts the attempt.
type ConfirmFunc func(ctx context.Context, review Review) (bool, error)

// SessionFactory opens a browser session. The release func must be called
// exactly once when the attempt is done with the session.
type SessionFactory func(ctx context.Context) (*platform.Session, func(), error)

// Options configures the orchestrator.
type Options struct {
	// MaxSessions bounds concurrent browser sessions.
	MaxSessions int64
	// MaxRetries is the number of additional tries after a transient
	// failure of a single step.
	MaxRetries int
	// RetryDelay is the base backoff, doubled per retry. Zero in tests.
	RetryDelay time.Duration
}

// Orchestrator runs attempts. One goroutine owns an attempt end to end, so
// its transitions are sequential even when multiple attempts run at once.
type Orchestrator struct {
	tracker    *tracker.Tracker
	sessions   *semaphore.Weighted
	newSession SessionFactory
	adapterFor func(platform.Kind) platform.Adapter
	confirm    ConfirmFunc
	opts       Options
	log        *zap.Logger
}

// New builds an orchestrator. A nil confirm gate refuses every submission.
func New(tr *tracker.Tracker, factory SessionFactory, confirm ConfirmFunc, opts Options, log *zap.Logger) *Orchestrator {
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = 2
	}
	if opts.RetryDelay < 0 {
		opts.RetryDelay = 0
	}
	if confirm == nil {
		confirm = func(context.Context, Review) (bool, error) { return false, nil }
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		tracker:    tr,
		sessions:   semaphore.NewWeighted(opts.MaxSessions),
		newSession: factory,
		adapterFor: func(kind platform.Kind) platform.Adapter { return platform.ForKind(kind, log) },
		confirm:    confirm,
		opts:       opts,
		log:        log,
	}
}

// Apply runs one attempt for the pair. The returned attempt carries the
// final state; the error is non-nil only when no attempt could be started
// or tracking itself failed.
func (o *Orchestrator) Apply(ctx context.Context, posting types.Posting, profile *types.Profile, forceNew bool) (types.ApplicationAttempt, error) {
	kind := platform.Detect(posting.URL)

	begin := o.tracker.Begin
	if forceNew {
		begin = o.tracker.ForceNew
	}
	attempt, err := begin(ctx, posting.ID, profile.ID, string(kind))
	if err != nil {
		return types.ApplicationAttempt{}, err
	}

	log := o.log.With(
		zap.String("attempt_id", attempt.ID.String()),
		zap.String("posting_id", posting.ID),
		zap.String("platform", string(kind)),
	)

	if err := o.sessions.Acquire(ctx, 1); err != nil {
		return o.finish(&attempt, types.StateFailed, "cancelled while waiting for a session", log)
	}
	defer o.sessions.Release(1)

	session, release, err := o.newSession(ctx)
	if err != nil {
		return o.finish(&attempt, types.StateFailed, fmt.Sprintf("failed to open browser session: %v", err), log)
	}
	defer release()

	return o.run(ctx, &attempt, session, o.adapterFor(kind), posting, profile, log)
}

func (o *Orchestrator) run(ctx context.Context, attempt *types.ApplicationAttempt, session *platform.Session, adapter platform.Adapter, posting types.Posting, profile *types.Profile, log *zap.Logger) (types.ApplicationAttempt, error) {
	var form *platform.Form
	err := o.withRetry(ctx, attempt, log, "discover", func() error {
		var err error
		form, err = adapter.Discover(ctx, session, posting)
		return err
	})
	if err != nil {
		return o.abort(attempt, err, posting, profile, log)
	}
	if err := o.tracker.Transition(ctx, attempt, types.StateFormDiscovered, fmt.Sprintf("%d fields found", len(form.Fields))); err != nil {
		return *attempt, err
	}

	var fm *platform.FieldMap
	err = o.withRetry(ctx, attempt, log, "map fields", func() error {
		var err error
		fm, err = adapter.MapFields(ctx, session, form, profile)
		return err
	})
	if err != nil {
		return o.abort(attempt, err, posting, profile, log)
	}
	if err := o.tracker.Transition(ctx, attempt, types.StateFieldsMapped, fmt.Sprintf("%d mapped, %d required unmapped", len(fm.Mapped), len(fm.UnmappedRequired))); err != nil {
		return *attempt, err
	}

	var filled *platform.FillResult
	err = o.withRetry(ctx, attempt, log, "fill", func() error {
		var err error
		filled, err = adapter.Fill(ctx, session, fm)
		return err
	})
	if err != nil {
		return o.abort(attempt, err, posting, profile, log)
	}
	if err := o.tracker.Transition(ctx, attempt, types.StateFieldsFilled, fmt.Sprintf("%d filled, %d skipped", len(filled.Filled), len(filled.Skipped))); err != nil {
		return *attempt, err
	}

	if err := o.tracker.Transition(ctx, attempt, types.StateAwaitingReview, "waiting for confirmation"); err != nil {
		return *attempt, err
	}

	review := Review{Posting: posting, Attempt: *attempt, Filled: filled.Filled, Skipped: filled.Skipped}
	for _, f := range fm.UnmappedRequired {
		review.UnmappedRequired = append(review.UnmappedRequired, f.Label)
	}
	ok, err := o.confirm(ctx, review)
	if err != nil {
		return o.finish(attempt, types.StateFailed, fmt.Sprintf("confirmation failed: %v", err), log)
	}
	if !ok {
		return o.finish(attempt, types.StateFailed, "declined by user", log)
	}

	if err := adapter.Submit(ctx, session); err != nil {
		return o.abort(attempt, err, posting, profile, log)
	}
	confirmed, err := adapter.ConfirmSuccess(ctx, session)
	if err != nil {
		return o.abort(attempt, err, posting, profile, log)
	}
	if !confirmed {
		// The click went out but the page never confirmed. Submission
		// may or may not have landed, so a human has to check.
		return o.finish(attempt, types.StateManualRequired, manualReason(platform.ErrSubmitUnconfirmed, posting, profile), log)
	}

	return o.finish(attempt, types.StateSubmitted, "confirmed by platform", log)
}

// withRetry runs a step, retrying transient failures with doubling backoff.
// Non-transient errors return immediately.
func (o *Orchestrator) withRetry(ctx context.Context, attempt *types.ApplicationAttempt, log *zap.Logger, step string, fn func() error) error {
	delay := o.opts.RetryDelay
	var err error
	for try := 0; ; try++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !platform.Transient(err) || try >= o.opts.MaxRetries {
			return err
		}
		attempt.AttemptCount++
		log.Warn("step failed, retrying",
			zap.String("step", step),
			zap.Int("try", try+1),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}

// abort classifies a step error into the terminal state it implies.
func (o *Orchestrator) abort(attempt *types.ApplicationAttempt, err error, posting types.Posting, profile *types.Profile, log *zap.Logger) (types.ApplicationAttempt, error) {
	var critical *platform.CriticalFieldError
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return o.finish(attempt, types.StateFailed, "cancelled", log)
	case errors.Is(err, platform.ErrAntiAutomation):
		return o.finish(attempt, types.StateManualRequired, manualReason(err, posting, profile), log)
	case errors.As(err, &critical):
		return o.finish(attempt, types.StateManualRequired, manualReason(err, posting, profile), log)
	case errors.Is(err, platform.ErrSubmitUnconfirmed):
		return o.finish(attempt, types.StateManualRequired, manualReason(err, posting, profile), log)
	}
	return o.finish(attempt, types.StateFailed, err.Error(), log)
}

func (o *Orchestrator) finish(attempt *types.ApplicationAttempt, state types.AttemptState, reason string, log *zap.Logger) (types.ApplicationAttempt, error) {
	// Transitions are recorded even when the caller's context is gone.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := o.tracker.Transition(ctx, attempt, state, reason); err != nil {
		return *attempt, err
	}
	switch state {
	case types.StateSubmitted:
		log.Info("application submitted")
	case types.StateManualRequired:
		log.Warn("manual completion required", zap.String("reason", logging.Truncate(reason, maxReasonLog)))
	default:
		log.Warn("attempt failed", zap.String("reason", logging.Truncate(reason, maxReasonLog)))
	}
	return *attempt, nil
}

// manualReason builds the handoff message, keeping the posting URL and the
// document paths so the human finishing the application has everything in
// one place.
func manualReason(err error, posting types.Posting, profile *types.Profile) string {
	var b strings.Builder
	b.WriteString(err.Error())
	fmt.Fprintf(&b, "; posting: %s", posting.URL)
	if profile.Resume != nil {
		fmt.Fprintf(&b, "; resume: %s", profile.Resume.Path)
	}
	if profile.CoverLetter != nil {
		fmt.Fprintf(&b, "; cover letter: %s", profile.CoverLetter.Path)
	}
	return b.String()
}
