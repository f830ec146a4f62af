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

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "config/cards.yaml", cfg.Game.CardFile)
	assert.Equal(t, 800*time.Millisecond, cfg.Game.DelayMin)
	assert.Equal(t, 2500*time.Millisecond, cfg.Game.DelayMax)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  address: ":9999"
game:
  human_deck: Tide Rider
  delay_min: 5ms
  delay_max: 10ms
logging:
  level: debug
  format: json
`))
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Address)
	assert.Equal(t, "Tide Rider", cfg.Game.HumanDeck)
	assert.Equal(t, 5*time.Millisecond, cfg.Game.DelayMin)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvertedDelays(t *testing.T) {
	_, err := Load(writeConfig(t, `
game:
  delay_min: 2s
  delay_max: 1s
`))
	assert.ErrorContains(t, err, "delay_max")
}
