package platform

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jonathan/jobpilot/internal/types"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		url      string
		expected Kind
	}{
		{"https://www.linkedin.com/jobs/view/123", KindEasyApply},
		{"https://boards.greenhouse.io/acme/jobs/4001", KindGreenhouse},
		{"https://jobs.lever.co/acme/abc-123", KindLever},
		{"https://acme.wd5.myworkdayjobs.com/en-US/careers/job/123", KindWorkday},
		{"https://careers.acme.com/jobs/123", KindGeneric},
		{"not a url at all ://", KindGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, Detect(tt.url))
		})
	}
}

func TestForKind_CoversEveryFamily(t *testing.T) {
	for _, kind := range []Kind{KindEasyApply, KindGreenhouse, KindLever, KindWorkday, KindGeneric} {
		assert.Equal(t, kind, ForKind(kind, zap.NewNop()).Kind())
	}
	assert.Equal(t, KindGeneric, ForKind(Kind("unknown"), nil).Kind())
}

func TestForKind_ThreadsLogger(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)

	adapter := ForKind(KindGreenhouse, zap.New(core)).(*familyAdapter)
	adapter.log.Debug("field skipped")

	require.Equal(t, 1, observed.Len())
	assert.Equal(t, "field skipped", observed.All()[0].Message)
}

func TestConfirmSuccess_HonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	adapter := ForKind(KindGeneric, nil).(*familyAdapter)
	start := time.Now()
	ok, err := adapter.ConfirmSuccess(ctx, nil)

	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

const applicationFormHTML = `
<form id="application-form">
  <label for="first_name">First Name</label>
  <input id="first_name" name="job_application[first_name]" type="text" required>
  <label for="last_name">Last Name</label>
  <input id="last_name" name="job_application[last_name]" type="text" required>
  <label for="email">Email</label>
  <input id="email" name="job_application[email]" type="email" required>
  <label for="phone">Phone</label>
  <input id="phone" name="job_application[phone]" type="tel">
  <label for="resume">Resume/CV</label>
  <input id="resume" name="job_application[resume]" type="file" required>
  <label for="cover_letter">Cover Letter</label>
  <input id="cover_letter" name="job_application[cover_letter]" type="file">
  <label for="github">GitHub profile</label>
  <input id="github" name="job_application[github]" type="text" required>
  <input type="hidden" name="token" value="x">
  <input type="submit" value="Submit Application">
</form>`

func TestParseFormFields(t *testing.T) {
	fields, err := ParseFormFields(applicationFormHTML)
	require.NoError(t, err)

	// hidden and submit inputs are excluded
	require.Len(t, fields, 7)
	assert.Equal(t, "First Name", fields[0].Label)
	assert.True(t, fields[0].Required)
	assert.Equal(t, "#first_name", fields[0].Selector)
	assert.Equal(t, "file", fields[4].Type)
}

func TestMapProfile_MapsKnownFields(t *testing.T) {
	fields, err := ParseFormFields(applicationFormHTML)
	require.NoError(t, err)

	profile := &types.Profile{
		ID:          "u1",
		Name:        "Jane Doe",
		Email:       "jane@example.com",
		Phone:       "+6591234567",
		Resume:      &types.DocumentRef{Name: "resume.pdf", Path: "/docs/resume.pdf"},
		CoverLetter: &types.DocumentRef{Name: "cover.pdf", Path: "/docs/cover.pdf"},
	}

	fm := MapProfile(fields, profile)

	byPurpose := make(map[string]MappedField)
	for _, mf := range fm.Mapped {
		byPurpose[mf.Purpose] = mf
	}

	assert.Equal(t, "Jane", byPurpose["first_name"].Value)
	assert.Equal(t, "Doe", byPurpose["last_name"].Value)
	assert.Equal(t, "jane@example.com", byPurpose["email"].Value)
	assert.True(t, byPurpose["email"].Critical)
	assert.True(t, byPurpose["resume"].Critical)
	assert.True(t, byPurpose["resume"].Upload)
	assert.Equal(t, "/docs/resume.pdf", byPurpose["resume"].Value)
	assert.Equal(t, "/docs/cover.pdf", byPurpose["cover_letter"].Value)
	assert.False(t, byPurpose["phone"].Critical)

	// The GitHub field is required but has no profile slot: recorded,
	// not blocking.
	require.Len(t, fm.UnmappedRequired, 1)
	assert.Equal(t, "github", fm.UnmappedRequired[0].ID)
}

func TestMapProfile_SingleNameField(t *testing.T) {
	html := `<label for="name">Your Name</label><input id="name" type="text">
	         <input id="mail" type="email">`
	fields, err := ParseFormFields(html)
	require.NoError(t, err)

	fm := MapProfile(fields, &types.Profile{ID: "u1", Name: "Jane Doe", Email: "j@x.com"})

	purposes := make(map[string]string)
	for _, mf := range fm.Mapped {
		purposes[mf.Purpose] = mf.Field.ID
	}
	assert.Equal(t, "name", purposes["name"])
	assert.Equal(t, "mail", purposes["email"], "type=email wins without any synonym")
}

func TestMapProfile_MissingDocumentsSkipped(t *testing.T) {
	fields, err := ParseFormFields(applicationFormHTML)
	require.NoError(t, err)

	fm := MapProfile(fields, &types.Profile{ID: "u1", Email: "j@x.com"})

	for _, mf := range fm.Mapped {
		assert.NotEqual(t, "resume", mf.Purpose, "no resume ref means no resume mapping")
	}
}

func TestTransient(t *testing.T) {
	assert.True(t, Transient(errors.New("context deadline exceeded")))
	assert.True(t, Transient(errors.New("Could not find node with given id")))
	assert.False(t, Transient(ErrAntiAutomation))
	assert.False(t, Transient(ErrFormNotFound))
	assert.False(t, Transient(&CriticalFieldError{Field: "email"}))
	assert.False(t, Transient(nil))
	assert.False(t, Transient(errors.New("some permanent failure")))
}

func TestCriticalFieldError_Unwraps(t *testing.T) {
	cause := errors.New("element vanished")
	err := &CriticalFieldError{Field: "resume", Cause: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "resume")
}
