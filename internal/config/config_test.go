package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/dodgetracker")
	t.Setenv("RIOT_API_KEY", "test-key")

	cfg, err := Load(zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.CycleTimeout)
	assert.Equal(t, 10*time.Second, cfg.RegionTimeout)
	assert.Equal(t, 5*time.Second, cfg.LolprosTimeout)
	assert.Equal(t, 75, cfg.DecayLPLoss)
	assert.Equal(t, 20000, cfg.ChunkSize)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/dodgetracker")
	t.Setenv("RIOT_API_KEY", "test-key")
	t.Setenv("CYCLE_TIMEOUT", "45s")
	t.Setenv("DECAY_LP_LOSS", "50")
	t.Setenv("CHUNK_SIZE", "2")

	cfg, err := Load(zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, 45*time.Second, cfg.CycleTimeout)
	assert.Equal(t, 50, cfg.DecayLPLoss)
	assert.Equal(t, 2, cfg.ChunkSize)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("RIOT_API_KEY", "test-key")

	_, err := Load(zerolog.Nop())
	assert.Error(t, err)
}

func TestLoadRequiresRiotAPIKey(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/dodgetracker")
	t.Setenv("RIOT_API_KEY", "")

	_, err := Load(zerolog.Nop())
	assert.Error(t, err)
}
