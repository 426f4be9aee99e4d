package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.Equal(t, "Impostor", cfg.Server.Name)
	assert.Equal(t, "0.0.0.0:22023", cfg.Network.BindAddress)
	assert.Equal(t, 256, cfg.Network.OutQueueSize)
	assert.Equal(t, 10*time.Second, cfg.Network.WriteTimeout)
	assert.Equal(t, 60*time.Second, cfg.Network.ReadTimeout)
	assert.Zero(t, cfg.Limits.MaxGames)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
name = "EU-1"

[network]
bind_address = "127.0.0.1:22023"

[limits]
max_games = 500

[logging]
format = "json"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "EU-1", cfg.Server.Name)
	assert.Equal(t, "127.0.0.1:22023", cfg.Network.BindAddress)
	assert.Equal(t, 500, cfg.Limits.MaxGames)
	assert.Equal(t, "json", cfg.Logging.Format)

	// Untouched sections keep their defaults.
	assert.Equal(t, 256, cfg.Network.OutQueueSize)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\n"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "parse config")
}
