package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, time.Hour, cfg.TTL)
	assert.Equal(t, 500, cfg.MaxEntries)
	assert.Equal(t, 5*time.Minute, cfg.SweepInterval)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NotEmpty(t, cfg.StateURL)
}

func TestLoad(t *testing.T) {
	t.Run("defaults when nothing is configured", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("config file overrides defaults", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)

		dir := filepath.Join(home, ".fantasycache")
		require.NoError(t, os.MkdirAll(dir, 0750))
		require.NoError(t, os.WriteFile(
			filepath.Join(dir, "config.yaml"),
			[]byte("ttl: 30m\nmax_entries: 50\nlog_level: debug\n"),
			0600,
		))

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 30*time.Minute, cfg.TTL)
		assert.Equal(t, 50, cfg.MaxEntries)
		assert.Equal(t, "debug", cfg.LogLevel)
		// Untouched keys keep their defaults.
		assert.Equal(t, 5*time.Minute, cfg.SweepInterval)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)

		dir := filepath.Join(home, ".fantasycache")
		require.NoError(t, os.MkdirAll(dir, 0750))
		require.NoError(t, os.WriteFile(
			filepath.Join(dir, "config.yaml"),
			[]byte("ttl: 30m\n"),
			0600,
		))

		t.Setenv("FANTASYCACHE_TTL", "2h")
		t.Setenv("FANTASYCACHE_DIR", "/tmp/elsewhere")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 2*time.Hour, cfg.TTL)
		assert.Equal(t, "/tmp/elsewhere", cfg.Dir)
	})

	t.Run("malformed file is an error", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)

		dir := filepath.Join(home, ".fantasycache")
		require.NoError(t, os.MkdirAll(dir, 0750))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("ttl: ["), 0600))

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestLoadFile(t *testing.T) {
	t.Run("explicit file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.yaml")
		require.NoError(t, os.WriteFile(path, []byte("max_entries: 7\n"), 0600))

		cfg, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, 7, cfg.MaxEntries)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestResolveDir(t *testing.T) {
	t.Run("explicit dir wins", func(t *testing.T) {
		cfg := Config{Dir: "/var/cache/fc"}
		assert.Equal(t, "/var/cache/fc", cfg.ResolveDir())
	})

	t.Run("home-relative default", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		cfg := Config{}
		assert.Equal(t, filepath.Join(home, ".fantasycache", "cache"), cfg.ResolveDir())
	})
}
