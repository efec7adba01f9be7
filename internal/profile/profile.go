// Package profile loads and checks candidate profiles. The profile document
// is owned by an external collaborator; this package only validates and
// reads it.
package profile

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/jobpilot/internal/schemas"
	"github.com/jonathan/jobpilot/internal/types"
	schemadocs "github.com/jonathan/jobpilot/schemas"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads a profile document from disk, validates it against the profile
// schema plus the struct-level rules, and stamps its content hash.
func Load(path string) (*types.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	return Parse(data)
}

// Parse validates raw profile JSON and returns the typed profile.
func Parse(data []byte) (*types.Profile, error) {
	if err := schemas.ValidateBytes(schemadocs.Profile, data); err != nil {
		return nil, fmt.Errorf("profile rejected: %w", err)
	}

	var p types.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	if err := validate.Struct(&p); err != nil {
		return nil, fmt.Errorf("profile rejected: %w", err)
	}

	p.ContentHash = p.ComputeContentHash()
	return &p, nil
}
