package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "")
	t.Setenv("MARQUEE_PORT", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.App.Port)
	assert.Equal(t, 500*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, 10, cfg.Catalog.TrendingLimit)
	assert.Equal(t, "https://image.tmdb.org/t/p", cfg.Catalog.ImageBaseURL)
	assert.Equal(t, "https://vidsrc.xyz/embed", cfg.Player.EmbedBaseURL)
	assert.Equal(t, 30*time.Minute, cfg.App.SessionIdleTimeout)
	assert.Empty(t, cfg.Catalog.APIKey)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "")
	t.Setenv("MARQUEE_PORT", "")

	path := filepath.Join(t.TempDir(), "config.yml")
	data := `
app:
  port: 9000
  debug: true
  log_dir: /var/log/marquee
catalog:
  api_key: from-file
  trending_limit: 5
  timeout: 3s
search:
  debounce: 250ms
player:
  embed_base_url: https://player.example/embed
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.App.Port)
	assert.True(t, cfg.App.Debug)
	assert.Equal(t, "/var/log/marquee", cfg.App.LogDir)
	assert.Equal(t, "from-file", cfg.Catalog.APIKey)
	assert.Equal(t, 5, cfg.Catalog.TrendingLimit)
	assert.Equal(t, 3*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, 250*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, "https://player.example/embed", cfg.Player.EmbedBaseURL)
	// untouched sections keep their defaults
	assert.Equal(t, "en-US", cfg.Catalog.Language)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("catalog:\n  api_key: from-file\n"), 0o644))

	t.Setenv("TMDB_API_KEY", "from-env")
	t.Setenv("MARQUEE_PORT", "7070")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Catalog.APIKey)
	assert.Equal(t, 7070, cfg.App.Port)
}

func TestLoad_InvalidPortEnv(t *testing.T) {
	t.Setenv("MARQUEE_PORT", "not-a-port")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	t.Setenv("MARQUEE_PORT", "")
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("app: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.App.Port = 0 }},
		{"zero debounce", func(c *Config) { c.Search.Debounce = 0 }},
		{"zero idle timeout", func(c *Config) { c.App.SessionIdleTimeout = 0 }},
		{"negative idle timeout", func(c *Config) { c.App.SessionIdleTimeout = -time.Minute }},
		{"zero trending limit", func(c *Config) { c.Catalog.TrendingLimit = 0 }},
		{"empty embed base", func(c *Config) { c.Player.EmbedBaseURL = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			setDefaults(cfg)
			require.NoError(t, cfg.Validate())

			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_RejectsZeroIdleTimeout(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "")
	t.Setenv("MARQUEE_PORT", "")

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("app:\n  session_idle_timeout: 0s\n"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "session_idle_timeout")
}
