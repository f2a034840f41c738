package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 2, cfg.MinStreak)
	assert.Equal(t, 16, cfg.Rules.AdultAge)

	_, err = os.Stat(filepath.Join(home, ".dailyhill", "config.toml"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(home, ".dailyhill", "db"))
	assert.NoError(t, err)
}

func TestLoadReadsFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, EnsureDirectories())

	content := `
database_path = "~/data/hill.sqlite"
log_level = "debug"
workers = 3
min_streak = 0

[rules]
kids_keywords = ["Groms"]
adult_age = 18
`
	path, err := ConfigPath()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "data", "hill.sqlite"), cfg.DatabasePath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 3, cfg.WorkerCount())
	assert.Equal(t, 1, cfg.MinStreak)

	rules := cfg.CategorizeRules()
	assert.Equal(t, []string{"Groms"}, rules.KidsKeywords)
	assert.Equal(t, 18, rules.AdultAge)
	assert.NotEmpty(t, rules.Levels)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, EnsureDirectories())

	cfg := DefaultConfig()
	cfg.MinStreak = 4
	cfg.Rules.KidsKeywords = []string{"Kids", "Teens"}
	require.NoError(t, Save(cfg))

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4, loaded.MinStreak)
	assert.Equal(t, []string{"Kids", "Teens"}, loaded.Rules.KidsKeywords)
}

func TestWorkerCountDefault(t *testing.T) {
	cfg := DefaultConfig()
	assert.Positive(t, cfg.WorkerCount())
}
