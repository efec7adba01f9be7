package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{"keywords":["go","backend"],"location":"remote"}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"go", "backend"}, cfg.Keywords)
	assert.Equal(t, 8, cfg.MaxConcurrent)
	assert.Equal(t, 15*time.Second, cfg.PerSourceTimeout)
	assert.Equal(t, 60*time.Second, cfg.GlobalBudget)
	assert.Equal(t, 2, cfg.MaxSessions)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_OverridesDurations(t *testing.T) {
	path := writeConfig(t, `{"per_source_timeout_seconds":5,"global_budget_seconds":30}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.PerSourceTimeout)
	assert.Equal(t, 30*time.Second, cfg.GlobalBudget)
}

func TestLoad_BadJSON(t *testing.T) {
	path := writeConfig(t, `{not json`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate_RejectsTimeoutOverBudget(t *testing.T) {
	cfg := Defaults()
	cfg.PerSourceTimeout = 2 * time.Minute
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsOutOfRange(t *testing.T) {
	cfg := Defaults()
	cfg.MinScore = 1.5
	assert.Error(t, cfg.Validate())
}
