// Package sources provides per-board job posting adapters with a shared
// contract: normalized postings out, typed failures, and a manual search URL
// fallback for sources that block automation.
package sources

import (
	"errors"
	"fmt"
)

// Sentinel targets for errors.Is branching at the aggregator layer.
var (
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrSourceBlocked     = errors.New("source blocked")
	ErrSourceParse       = errors.New("source parse error")
)

// SourceError wraps a failure from one adapter with its category.
type SourceError struct {
	Source string
	Kind   error // one of the sentinels above
	Cause  error
}

func (e *SourceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("source %s: %v: %v", e.Source, e.Kind, e.Cause)
	}
	return fmt.Sprintf("source %s: %v", e.Source, e.Kind)
}

func (e *SourceError) Unwrap() error {
	return e.Kind
}

// unavailable builds a SourceError for network-level failures.
func unavailable(source string, cause error) error {
	return &SourceError{Source: source, Kind: ErrSourceUnavailable, Cause: cause}
}

// blocked builds a SourceError for anti-bot rejections. Blocked sources are
// never retried within a run.
func blocked(source string, cause error) error {
	return &SourceError{Source: source, Kind: ErrSourceBlocked, Cause: cause}
}

// parseError builds a SourceError for page-structure drift.
func parseError(source string, cause error) error {
	return &SourceError{Source: source, Kind: ErrSourceParse, Cause: cause}
}
