// Package platform implements per-site-family application automation:
// form discovery, field mapping, filling, and submission over a headless
// browser session.
package platform

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel targets for errors.Is branching in the orchestrator.
var (
	// ErrFormNotFound means the adapter could not locate an application
	// entry point on the posting page.
	ErrFormNotFound = errors.New("application form not found")
	// ErrAntiAutomation means a CAPTCHA or login wall is in the way. The
	// attempt degrades to manual, never retried automatically.
	ErrAntiAutomation = errors.New("anti-automation barrier detected")
	// ErrSubmitUnconfirmed means the submit action ran but the post-submit
	// check could not confirm success.
	ErrSubmitUnconfirmed = errors.New("submission could not be confirmed")
)

// CriticalFieldError means a field the application cannot proceed without
// (email or resume) failed to fill. Non-critical fill failures are logged
// and skipped instead.
type CriticalFieldError struct {
	Field string
	Cause error
}

func (e *CriticalFieldError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("critical field %q failed to fill: %v", e.Field, e.Cause)
	}
	return fmt.Sprintf("critical field %q failed to fill", e.Field)
}

func (e *CriticalFieldError) Unwrap() error {
	return e.Cause
}

// transientMarkers identify failures worth retrying: timeouts and elements
// that went stale between discovery and interaction.
var transientMarkers = []string{
	"context deadline exceeded",
	"stale",
	"node not found",
	"could not find node",
	"net::err_network_changed",
	"net::err_connection_reset",
}

// Transient reports whether an automation error is worth a bounded retry.
// Anti-automation and critical-field failures are never transient.
func Transient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAntiAutomation) || errors.Is(err, ErrFormNotFound) {
		return false
	}
	var cfe *CriticalFieldError
	if errors.As(err, &cfe) {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, m := range transientMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
