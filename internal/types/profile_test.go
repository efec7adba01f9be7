package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfile_Complete(t *testing.T) {
	tests := []struct {
		name     string
		profile  *Profile
		expected bool
	}{
		{"nil profile", nil, false},
		{"missing id", &Profile{Skills: []string{"go"}}, false},
		{"no skills or experience", &Profile{ID: "u1"}, false},
		{"skills only", &Profile{ID: "u1", Skills: []string{"go"}}, true},
		{"experience only", &Profile{ID: "u1", Experience: []ExperienceEntry{{Title: "Engineer", Years: 2}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.profile.Complete())
		})
	}
}

func TestProfile_TotalYears(t *testing.T) {
	p := &Profile{
		Experience: []ExperienceEntry{
			{Title: "Engineer", Years: 2.5},
			{Title: "Senior Engineer", Years: 3},
		},
	}
	assert.InDelta(t, 5.5, p.TotalYears(), 0.001)
}

func TestProfile_ComputeContentHash_Stable(t *testing.T) {
	p := &Profile{ID: "u1", Skills: []string{"go", "sql"}}
	h1 := p.ComputeContentHash()
	assert.NotEmpty(t, h1)
	assert.Equal(t, h1, p.ComputeContentHash())

	p.Skills = append(p.Skills, "python")
	assert.NotEqual(t, h1, p.ComputeContentHash())
}
