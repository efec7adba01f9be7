package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validProfile = `{
	"id": "prof1",
	"name": "Jane Doe",
	"email": "jane@example.com",
	"phone": "+1 555 0100",
	"skills": ["go", "postgresql", "docker"],
	"experience": [
		{"title": "Backend Engineer", "company": "Acme", "years": 3.5, "skills": ["go"]}
	],
	"education": [
		{"degree": "BSc", "field": "Computer Science", "institution": "State University"}
	],
	"resume": {"name": "resume.pdf", "path": "/docs/resume.pdf"}
}`

func TestParse_ValidProfile(t *testing.T) {
	p, err := Parse([]byte(validProfile))
	require.NoError(t, err)

	assert.Equal(t, "prof1", p.ID)
	assert.Equal(t, []string{"go", "postgresql", "docker"}, p.Skills)
	assert.InDelta(t, 3.5, p.TotalYears(), 1e-9)
	require.NotNil(t, p.Resume)
	assert.Equal(t, "/docs/resume.pdf", p.Resume.Path)
	assert.NotEmpty(t, p.ContentHash)
	assert.True(t, p.Complete())
}

func TestParse_ContentHashIsStable(t *testing.T) {
	a, err := Parse([]byte(validProfile))
	require.NoError(t, err)
	b, err := Parse([]byte(validProfile))
	require.NoError(t, err)
	assert.Equal(t, a.ContentHash, b.ContentHash)
}

func TestParse_MissingID(t *testing.T) {
	_, err := Parse([]byte(`{"name": "Jane Doe", "skills": ["go"]}`))
	assert.Error(t, err)
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte(`{"id": "prof1", "favorite_color": "green"}`))
	assert.Error(t, err)
}

func TestParse_DocumentMissingPath(t *testing.T) {
	_, err := Parse([]byte(`{"id": "prof1", "resume": {"name": "resume.pdf"}}`))
	assert.Error(t, err)
}

func TestParse_BadEmail(t *testing.T) {
	_, err := Parse([]byte(`{"id": "prof1", "email": "not-an-email"}`))
	assert.Error(t, err)
}

func TestParse_NotJSON(t *testing.T) {
	_, err := Parse([]byte(`id: prof1`))
	assert.Error(t, err)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.json")
	require.NoError(t, os.WriteFile(path, []byte(validProfile), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "prof1", p.ID)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
