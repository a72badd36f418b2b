package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/duels")
	t.Setenv("TWITCH_CHANNELS", "toluafo,other")

	cfg := &Config{}
	require.NoError(t, env.Parse(cfg))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DefaultGame(), cfg.Game)
	assert.Equal(t, []string{"toluafo", "other"}, cfg.TwitchChannels)
	assert.Equal(t, ":5200", cfg.HTTPAddr)
	assert.Equal(t, "duel.events", cfg.AMQPExchange)
	assert.False(t, cfg.TwitchEnabled())
	assert.False(t, cfg.R2Enabled())
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/duels")
	t.Setenv("GUESS_BUDGET", "3")
	t.Setenv("STALE_AFTER", "90s")

	cfg := &Config{}
	require.NoError(t, env.Parse(cfg))
	assert.Equal(t, 3, cfg.Game.GuessBudget)
	assert.Equal(t, 90*time.Second, cfg.Game.StaleAfter)
}

func TestValidate(t *testing.T) {
	cfg := &Config{Game: DefaultGame()}
	require.NoError(t, cfg.Validate())

	cfg.Game.GuessBudget = 0
	assert.Error(t, cfg.Validate())

	cfg.Game = DefaultGame()
	cfg.Game.DefaultWager = -1
	assert.Error(t, cfg.Validate())
}

func TestRequiredDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	cfg := &Config{}
	assert.Error(t, env.Parse(cfg))
}

func TestLoadWithoutDotEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://localhost/duels")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.DotEnvLoaded)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DATABASE_URL=postgres://localhost/from-file\n"), 0o600))
	t.Chdir(dir)
	t.Setenv("DATABASE_URL", "")
	require.NoError(t, os.Unsetenv("DATABASE_URL"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.DotEnvLoaded)
	assert.Equal(t, "postgres://localhost/from-file", cfg.DatabaseURL)
}
