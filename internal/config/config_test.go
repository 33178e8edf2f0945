package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutConfigFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8787", cfg.ServerURL)
	assert.Equal(t, cfg.ServerURL, cfg.StorageURL, "storage defaults to the server host")
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.NotEmpty(t, cfg.TokenPath)
	assert.NotEmpty(t, cfg.CachePath)
	assert.NotEmpty(t, cfg.LogPath)
}

func TestLoad_ReadsExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"server: https://todo.example.com/\n"+
			"storage: https://blobs.example.com\n"+
			"timeout: 3s\n"+
			"tokenPath: /tmp/tok\n",
	), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://todo.example.com", cfg.ServerURL, "trailing slash stripped")
	assert.Equal(t, "https://blobs.example.com", cfg.StorageURL)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "/tmp/tok", cfg.TokenPath)
}

func TestLoad_ExplicitMissingFileIsAnError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: http://from-file\n"), 0o644))
	t.Setenv("TODOSYNC_SERVER", "http://from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-env", cfg.ServerURL)
}

func TestLoad_BadTimeoutFallsBackToDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timeout: banana\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
}
