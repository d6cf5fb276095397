package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	logFile := filepath.Join(dir, "logs", "app.log")
	content := "log:\n  file: " + logFile + "\n" + body
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("writeConfig() failed: %v", err)
	}
	return dir
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := writeConfig(t, "jwt:\n  secret: short\n")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 24*time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, dir, cfg.Path)

	g := cfg.Gamification
	assert.Equal(t, 10, g.ActivityPoints["complete_quiz"])
	assert.Equal(t, DuplicateAllow, g.DuplicatePolicy)
	assert.Equal(t, 30*time.Second, g.DuplicateCooldown)
	assert.Equal(t, 72*time.Hour, g.ActiveWindow)
	assert.Equal(t, 200, g.LevelStep)
	assert.Equal(t, "UTC", g.Timezone)

	assert.DirExists(t, filepath.Join(dir, "logs"))
}

func TestLoadConfig_Overrides(t *testing.T) {
	dir := writeConfig(t, `
database:
  driver: sqlite
  sqlite_path: test.db
gamification:
  activity_points:
    complete_quiz: 12
  duplicate_policy: cooldown
  duplicate_cooldown: 2m
  level_step: 50
`)
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 12, cfg.Gamification.ActivityPoints["complete_quiz"])
	assert.Equal(t, DuplicateCooldown, cfg.Gamification.DuplicatePolicy)
	assert.Equal(t, 2*time.Minute, cfg.Gamification.DuplicateCooldown)
	assert.Equal(t, 50, cfg.Gamification.LevelStep)
}

func TestLoadConfig_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"short secret in release", "server:\n  mode: release\njwt:\n  secret: short\n"},
		{"unknown duplicate policy", "gamification:\n  duplicate_policy: sometimes\n"},
		{"negative points", "gamification:\n  activity_points:\n    play_game: -5\n"},
		{"zero level step", "gamification:\n  level_step: 0\n"},
		{"bad timezone", "gamification:\n  timezone: Mars/Olympus\n"},
		{"zero rate limit", "rate_limit:\n  max_requests: 0\n"},
		{"zero rate window", "rate_limit:\n  window_minutes: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}

	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}

func TestGamificationConfig_Validate(t *testing.T) {
	g := GamificationConfig{
		DuplicatePolicy: DuplicateCooldown,
		LevelStep:       100,
		BatchSize:       10,
		Timezone:        "UTC",
	}
	assert.Error(t, g.Validate())

	g.DuplicateCooldown = time.Second
	assert.NoError(t, g.Validate())

	g.BatchSize = 0
	assert.Error(t, g.Validate())
}
