package types

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Profile represents candidate data owned by the external profile-management
// collaborator. The core only reads it.
type Profile struct {
	ID          string            `json:"id" validate:"required"`
	Name        string            `json:"name"`
	Email       string            `json:"email" validate:"omitempty,email"`
	Phone       string            `json:"phone"`
	Skills      []string          `json:"skills"`
	Experience  []ExperienceEntry `json:"experience"`
	Education   []EducationEntry  `json:"education"`
	Resume      *DocumentRef      `json:"resume,omitempty"`
	CoverLetter *DocumentRef      `json:"cover_letter,omitempty"`
	// Embedding is an optional precomputed vector supplied by the
	// collaborator. When present, semantic matching skips the profile-side
	// embedding call.
	Embedding   []float32 `json:"embedding,omitempty"`
	ContentHash string    `json:"-"`
}

// ExperienceEntry represents one work history entry.
type ExperienceEntry struct {
	Title   string   `json:"title"`
	Company string   `json:"company"`
	Years   float64  `json:"years"`
	Skills  []string `json:"skills"`
}

// EducationEntry represents one education history entry.
type EducationEntry struct {
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	Institution string `json:"institution"`
}

// DocumentRef is an opaque reference to a stored document (resume or cover
// letter) retrievable from the document store collaborator.
type DocumentRef struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// TotalYears sums years across all experience entries.
func (p *Profile) TotalYears() float64 {
	var total float64
	for _, e := range p.Experience {
		total += e.Years
	}
	return total
}

// Complete reports whether the profile has enough content to match against.
// An incomplete profile fails the match request rather than producing
// meaningless zero scores.
func (p *Profile) Complete() bool {
	if p == nil || p.ID == "" {
		return false
	}
	return len(p.Skills) > 0 || len(p.Experience) > 0
}

// ComputeContentHash derives the change-detection hash over the profile's
// JSON form, excluding the hash field itself.
func (p *Profile) ComputeContentHash() string {
	data, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:16]
}
