package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize_PreservesTechSuffixes(t *testing.T) {
	tokens := Tokenize("We ship C++ and C# services on node.js.")

	assert.True(t, tokens["c++"])
	assert.True(t, tokens["c#"])
	assert.True(t, tokens["node.js"])
	assert.False(t, tokens["and"], "stop words must not become tokens")
}

func TestTokenize_EmitsMultiWordPhrases(t *testing.T) {
	tokens := Tokenize("Deploy to Google Cloud Platform with Amazon Web Services")

	assert.True(t, tokens["google cloud"])
	assert.True(t, tokens["aws"], "three-word alias folds onto its canonical form")
}

func TestSkillScore(t *testing.T) {
	tests := []struct {
		name   string
		skills []string
		text   string
		want   float64
	}{
		{
			name:   "multi-word skill spelled out in posting",
			skills: []string{"machine learning", "python"},
			text:   "We need machine learning experience and Python",
			want:   1.0,
		},
		{
			name:   "abbreviated posting matches full profile skill",
			skills: []string{"machine learning"},
			text:   "ML engineers wanted",
			want:   1.0,
		},
		{
			name:   "profile abbreviation matches spelled-out posting",
			skills: []string{"gcp"},
			text:   "Deploy services on Google Cloud Platform",
			want:   1.0,
		},
		{
			name:   "partial overlap",
			skills: []string{"python", "rust", "kubernetes"},
			text:   "Python and Kubernetes in production",
			want:   2.0 / 3.0,
		},
		{
			name:   "duplicate skills count once",
			skills: []string{"Python", "python", "py"},
			text:   "Python shop",
			want:   1.0,
		},
		{
			name:   "no overlap",
			skills: []string{"cobol"},
			text:   "Modern Go backend",
			want:   0,
		},
		{
			name:   "empty skill set",
			skills: nil,
			text:   "Anything goes",
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SkillScore(tt.skills, Tokenize(tt.text))
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}
