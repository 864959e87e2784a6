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
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_DefaultsApplyWithoutFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "@every 45s", cfg.Monitor.PollCron)
	assert.Equal(t, 150, cfg.Monitor.HistoryCap)
	assert.Equal(t, 24, cfg.Monitor.TrailingWindowHours)
	assert.Equal(t, 5000.0, cfg.Monitor.MinLiquidityUSD)
	assert.Equal(t, "hard", cfg.Risk.Profile)
	assert.Equal(t, 6, cfg.Risk.LowMax)
	assert.Equal(t, 12, cfg.Risk.MediumMax)
	assert.Equal(t, 60, cfg.Alerts.CooldownMinutes)
	assert.Equal(t, time.Hour, cfg.CooldownWindow())
	assert.Equal(t, 24*time.Hour, cfg.TrailingWindow())
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
monitor:
  history_cap: 100
  trailing_window_hours: 12
risk:
  profile: soft
alerts:
  cooldown_minutes: 30
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.Monitor.HistoryCap)
	assert.Equal(t, 12*time.Hour, cfg.TrailingWindow())
	assert.Equal(t, "soft", cfg.Risk.Profile)
	assert.Equal(t, 30*time.Minute, cfg.CooldownWindow())
}

func TestValidate_RejectsBadValues(t *testing.T) {
	path := writeConfig(t, `
monitor:
  history_cap: 0
`)
	_, err := LoadConfig(path)
	assert.Error(t, err)

	path = writeConfig(t, `
risk:
  low_max: 12
  medium_max: 12
`)
	_, err = LoadConfig(path)
	assert.Error(t, err)

	path = writeConfig(t, `
risk:
  profile: paranoid
`)
	_, err = LoadConfig(path)
	assert.Error(t, err)
}
