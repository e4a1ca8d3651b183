package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("RENTNEST_REMOTE_URL", "https://api.rentnest.test")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://api.rentnest.test", cfg.RemoteBaseURL)
	assert.Equal(t, DefaultResources, cfg.Resources)
	assert.Equal(t, 15*time.Minute, cfg.SyncInterval)
	assert.Equal(t, "8090", cfg.ServerPort)
	assert.Equal(t, "./data", cfg.DataDir)
}

func TestLoadRequiresRemoteURL(t *testing.T) {
	t.Setenv("RENTNEST_REMOTE_URL", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "remote_base_url")
}

func TestLoadYAMLFile(t *testing.T) {
	t.Setenv("RENTNEST_REMOTE_URL", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
remote_base_url: https://api.rentnest.test
api_token: file-token
data_dir: /var/lib/rentnest
resources:
  - properties
  - payments
sync_interval: 5m
server_port: "9000"
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-token", cfg.APIToken)
	assert.Equal(t, "/var/lib/rentnest", cfg.DataDir)
	assert.Equal(t, []string{"properties", "payments"}, cfg.Resources)
	assert.Equal(t, 5*time.Minute, cfg.SyncInterval)
	assert.Equal(t, "9000", cfg.ServerPort)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
remote_base_url: https://file.rentnest.test
api_token: file-token
`), 0644))

	t.Setenv("RENTNEST_REMOTE_URL", "https://env.rentnest.test")
	t.Setenv("RENTNEST_API_TOKEN", "env-token")
	t.Setenv("RENTNEST_SYNC_INTERVAL", "90s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://env.rentnest.test", cfg.RemoteBaseURL)
	assert.Equal(t, "env-token", cfg.APIToken)
	assert.Equal(t, 90*time.Second, cfg.SyncInterval)
}

func TestInvalidSyncInterval(t *testing.T) {
	t.Setenv("RENTNEST_REMOTE_URL", "https://api.rentnest.test")
	t.Setenv("RENTNEST_SYNC_INTERVAL", "soon")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RENTNEST_SYNC_INTERVAL")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestEmptyResourcesRejected(t *testing.T) {
	t.Setenv("RENTNEST_REMOTE_URL", "https://api.rentnest.test")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("resources: []\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resource")
}
