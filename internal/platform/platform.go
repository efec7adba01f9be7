package platform

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/jobpilot/internal/types"
)

// Kind identifies a site family with its own application flow.
type Kind string

const (
	// KindEasyApply is linkedin's in-page apply flow.
	KindEasyApply Kind = "easyapply"
	// KindGreenhouse is the Greenhouse ATS application form.
	KindGreenhouse Kind = "greenhouse"
	// KindLever is the Lever ATS application form.
	KindLever Kind = "lever"
	// KindWorkday is the Workday ATS multi-step flow.
	KindWorkday Kind = "workday"
	// KindGeneric is the fallback for unrecognized sites.
	KindGeneric Kind = "generic"
)

// Detect identifies the site family from a posting URL. Selection is by
// host pattern, never by runtime type inspection.
func Detect(rawURL string) Kind {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return KindGeneric
	}
	host := strings.ToLower(parsed.Host)

	switch {
	case strings.Contains(host, "linkedin.com"):
		return KindEasyApply
	case strings.Contains(host, "greenhouse.io"):
		return KindGreenhouse
	case strings.Contains(host, "lever.co"):
		return KindLever
	case strings.Contains(host, "myworkdayjobs.com"), strings.Contains(host, "workday.com"):
		return KindWorkday
	}
	return KindGeneric
}

// Form is a discovered application form.
type Form struct {
	URL    string
	Fields []FormField
}

// FormField is one input discovered on the form.
type FormField struct {
	Selector    string
	Name        string
	ID          string
	Label       string
	Placeholder string
	Type        string // text, email, tel, file, textarea, ...
	Required    bool
}

// MappedField binds a form field to the profile value that fills it.
type MappedField struct {
	Field FormField
	// Purpose names the profile slot: name, first_name, last_name, email,
	// phone, resume, cover_letter.
	Purpose string
	Value   string
	Upload  bool // file upload rather than keystrokes
	// Critical fields (email, resume) abort to manual on fill failure;
	// the rest are skipped.
	Critical bool
}

// FieldMap is the outcome of mapping profile data onto a form. Unmapped
// required fields are recorded but do not block progression.
type FieldMap struct {
	Mapped           []MappedField
	UnmappedRequired []FormField
}

// FillResult records per-field fill outcomes.
type FillResult struct {
	Filled  []string
	Skipped []string
}

// Adapter is the per-family automation capability set. One concrete
// implementation exists per family plus the generic default.
type Adapter interface {
	Kind() Kind
	// Discover locates the application entry point for the posting.
	Discover(ctx context.Context, s *Session, posting types.Posting) (*Form, error)
	// MapFields maps known profile fields onto the discovered form.
	MapFields(ctx context.Context, s *Session, form *Form, profile *types.Profile) (*FieldMap, error)
	// Fill populates the live form.
	Fill(ctx context.Context, s *Session, fm *FieldMap) (*FillResult, error)
	// Submit performs the submit action. Callers gate this behind an
	// explicit external confirmation; adapters never self-submit.
	Submit(ctx context.Context, s *Session) error
	// ConfirmSuccess checks the post-submit page for a success signal.
	ConfirmSuccess(ctx context.Context, s *Session) (bool, error)
}

// ForKind returns the adapter for a detected family. A nil log disables
// adapter logging.
func ForKind(kind Kind, log *zap.Logger) Adapter {
	if log == nil {
		log = zap.NewNop()
	}
	switch kind {
	case KindEasyApply:
		return newEasyApply(log)
	case KindGreenhouse:
		return newGreenhouseApply(log)
	case KindLever:
		return newLeverApply(log)
	case KindWorkday:
		return newWorkdayApply(log)
	}
	return newGenericApply(log)
}
