package platform

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/jobpilot/internal/types"
)

// familyAdapter implements the shared discover/map/fill/submit flow, with
// per-family selector sets doing the site-specific work.
type familyAdapter struct {
	kind Kind
	// applySelectors locate the button that opens the application form.
	// Empty means the form is already on the posting page.
	applySelectors []string
	// submitSelectors locate the final submit control.
	submitSelectors []string
	// successMarkers are text fragments confirming submission.
	successMarkers []string
	log            *zap.Logger
}

func newEasyApply(log *zap.Logger) Adapter {
	return &familyAdapter{
		kind: KindEasyApply,
		applySelectors: []string{
			`button.jobs-apply-button`,
			`button[data-control-name='jobdetails_topcard_inapply']`,
			`button[aria-label*='Easy Apply']`,
		},
		submitSelectors: []string{
			`button[aria-label='Submit application']`,
			`button[aria-label*='Submit']`,
		},
		successMarkers: []string{"application sent", "your application was sent"},
		log:            log,
	}
}

func newGreenhouseApply(log *zap.Logger) Adapter {
	return &familyAdapter{
		kind: KindGreenhouse,
		// Greenhouse renders the form on the posting page.
		submitSelectors: []string{`input#submit_app`, `button[type='submit']`},
		successMarkers:  []string{"thank you for applying", "application has been submitted"},
		log:             log,
	}
}

func newLeverApply(log *zap.Logger) Adapter {
	return &familyAdapter{
		kind:            KindLever,
		applySelectors:  []string{`a.postings-btn[href*='apply']`, `a[href$='/apply']`},
		submitSelectors: []string{`button#btn-submit`, `button[type='submit']`},
		successMarkers:  []string{"application submitted", "thank you"},
		log:             log,
	}
}

func newWorkdayApply(log *zap.Logger) Adapter {
	return &familyAdapter{
		kind: KindWorkday,
		applySelectors: []string{
			`a[data-automation-id='adventureButton']`,
			`button[data-automation-id='applyButton']`,
		},
		submitSelectors: []string{`button[data-automation-id='bottom-navigation-next-button']`},
		successMarkers:  []string{"application submitted", "you've applied"},
		log:             log,
	}
}

func newGenericApply(log *zap.Logger) Adapter {
	return &familyAdapter{
		kind: KindGeneric,
		applySelectors: []string{
			`a[href*='apply']`,
			`button[id*='apply']`,
			`button[class*='apply']`,
		},
		submitSelectors: []string{`button[type='submit']`, `input[type='submit']`},
		successMarkers:  []string{"thank you", "application received", "application submitted"},
		log:             log,
	}
}

func (a *familyAdapter) Kind() Kind { return a.kind }

// navTimeout bounds individual page interactions, not the whole flow; the
// orchestrator's context carries the overall deadline.
const navTimeout = 30 * time.Second

// confirmDelay is how long to wait for a late-rendering confirmation page.
var confirmDelay = 2 * time.Second

// Discover loads the posting page, clicks through to the application form
// when the family needs it, and parses the fillable fields.
func (a *familyAdapter) Discover(ctx context.Context, s *Session, posting types.Posting) (*Form, error) {
	if err := s.Navigate(posting.URL, navTimeout); err != nil {
		return nil, fmt.Errorf("failed to open posting page: %w", err)
	}
	if err := s.DetectWall(); err != nil {
		return nil, err
	}

	// Click the first apply control that exists. Not finding one is fine
	// for families that render the form inline.
	for _, sel := range a.applySelectors {
		if !s.Exists(sel) {
			continue
		}
		if err := s.Click(sel, navTimeout); err != nil {
			continue
		}
		break
	}

	if err := s.DetectWall(); err != nil {
		return nil, err
	}

	html, err := s.HTML()
	if err != nil {
		return nil, err
	}
	fields, err := ParseFormFields(html)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fillable fields on %s", ErrFormNotFound, posting.URL)
	}
	return &Form{URL: posting.URL, Fields: fields}, nil
}

// MapFields applies the shared label/name heuristics.
func (a *familyAdapter) MapFields(_ context.Context, s *Session, form *Form, profile *types.Profile) (*FieldMap, error) {
	if err := s.DetectWall(); err != nil {
		return nil, err
	}
	return MapProfile(form.Fields, profile), nil
}

// Fill populates the live form. Non-critical failures are skipped; a
// critical failure (email or resume) aborts with CriticalFieldError so the
// orchestrator can hand off to the user.
func (a *familyAdapter) Fill(_ context.Context, s *Session, fm *FieldMap) (*FillResult, error) {
	res := &FillResult{}
	for _, mf := range fm.Mapped {
		var err error
		if mf.Upload {
			err = s.Upload(mf.Field.Selector, mf.Value, navTimeout)
		} else {
			err = s.Fill(mf.Field.Selector, mf.Value, navTimeout)
		}
		if err == nil {
			res.Filled = append(res.Filled, mf.Purpose)
			continue
		}
		if mf.Critical {
			return res, &CriticalFieldError{Field: mf.Purpose, Cause: err}
		}
		a.log.Debug("skipping field after fill error",
			zap.String("purpose", mf.Purpose), zap.Error(err))
		res.Skipped = append(res.Skipped, mf.Purpose)
	}

	if err := s.DetectWall(); err != nil {
		return res, err
	}
	return res, nil
}

// Submit clicks the family's submit control. Only the orchestrator calls
// this, and only after the external confirmation signal.
func (a *familyAdapter) Submit(_ context.Context, s *Session) error {
	if err := s.DetectWall(); err != nil {
		return err
	}
	for _, sel := range a.submitSelectors {
		if !s.Exists(sel) {
			continue
		}
		if err := s.Click(sel, navTimeout); err != nil {
			return fmt.Errorf("failed to click submit: %w", err)
		}
		return nil
	}
	return fmt.Errorf("%w: no submit control found", ErrFormNotFound)
}

// ConfirmSuccess checks the post-submit page for the family's success
// markers. An absent marker is not an error; it reports false so the caller
// degrades to manual instead of asserting success.
func (a *familyAdapter) ConfirmSuccess(ctx context.Context, s *Session) (bool, error) {
	// Submission confirmations can render late.
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-time.After(confirmDelay):
	}

	text, err := s.Text()
	if err != nil {
		return false, err
	}
	lower := strings.ToLower(text)
	for _, marker := range a.successMarkers {
		if strings.Contains(lower, marker) {
			return true, nil
		}
	}
	return false, nil
}
