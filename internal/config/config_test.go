package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 5, cfg.AI.Cards.LowHealthThreshold)
	assert.Equal(t, 5, cfg.AI.Trade.HighThreatAttack)
	assert.InDelta(t, 1.3, cfg.AI.Trade.BaseRatio, 1e-9)
	assert.True(t, cfg.AI.Variance.Enabled)
	assert.Equal(t, 400*time.Millisecond, cfg.Spectator.ActionGap)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().AI, cfg.AI)
}

func TestLoadYAMLOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
logging:
  level: debug
  format: json
ai:
  seed: 42
  pacing: 250ms
  cards:
    hold_probability: 0.25
  variance:
    enabled: false
simulation:
  matches: 7
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, int64(42), cfg.AI.Seed)
	assert.Equal(t, 250*time.Millisecond, cfg.AI.Pacing)
	assert.InDelta(t, 0.25, cfg.AI.Cards.HoldProbability, 1e-9)
	assert.False(t, cfg.AI.Variance.Enabled)
	assert.Equal(t, 7, cfg.Simulation.Matches)
	// Untouched keys keep their defaults.
	assert.InDelta(t, 0.5, cfg.AI.Cards.EarlyStopProbability, 1e-9)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("DUELIST_AI_CARDS_LOW_HEALTH_THRESHOLD", "8")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.AI.Cards.LowHealthThreshold)
}

func TestLoadRejectsInvalidProbability(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ai:\n  variance:\n    skip_attack_probability: 1.5\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative hold probability", func(c *Config) { c.AI.Cards.HoldProbability = -0.1 }},
		{"early stop above one", func(c *Config) { c.AI.Cards.EarlyStopProbability = 1.01 }},
		{"negative low health threshold", func(c *Config) { c.AI.Cards.LowHealthThreshold = -1 }},
		{"inverted value cutoffs", func(c *Config) { c.AI.Cards.LowValueCutoff = 90 }},
		{"negative high attack threshold", func(c *Config) { c.AI.Attacks.HighAttackThreshold = -2 }},
		{"trade bounds inverted", func(c *Config) { c.AI.Trade.MaxRatio = 0.5 }},
		{"zero trade min ratio", func(c *Config) { c.AI.Trade.MinRatio = 0 }},
		{"pick probabilities above one", func(c *Config) {
			c.AI.Variance.SecondBestProbability = 0.7
			c.AI.Variance.ThirdBestProbability = 0.6
		}},
		{"negative pacing", func(c *Config) { c.AI.Pacing = -time.Second }},
		{"negative matches", func(c *Config) { c.Simulation.Matches = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestValidateNil(t *testing.T) {
	var cfg *Config
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}
