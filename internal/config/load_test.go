package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbari-org/dettrackd/internal/config"
)

func writeYAML(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadReadsYAMLFields(t *testing.T) {
	path := writeYAML(t, `
minio:
  root_bucket: videos
  track_prefix: custom-tracks
monitors:
  docker:
    check_every: 5
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "videos", cfg.Minio.RootBucket)
	assert.Equal(t, "custom-tracks", cfg.Minio.TrackPrefix)
	assert.Equal(t, 5, cfg.Monitors.Docker.CheckEvery)
	assert.Equal(t, "models", cfg.Minio.ModelPrefix, "untouched fields still get defaults")
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "models", cfg.Minio.ModelPrefix)
}

func TestLoadAppliesEnvironmentOverrides(t *testing.T) {
	path := writeYAML(t, `
minio:
  root_bucket: videos
`)

	t.Setenv("MINIO_ACCESS_KEY", "env-key")
	t.Setenv("MINIO_SECRET_KEY", "env-secret")
	t.Setenv("NOTIFY_URL", "https://hooks.example.com/notify")
	t.Setenv("NUM_GPUS", "2")
	t.Setenv("MODE", "prod")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Minio.AccessKey)
	assert.Equal(t, "env-secret", cfg.Minio.SecretKey)
	assert.Equal(t, "https://hooks.example.com/notify", cfg.NotifyURL)
	assert.Equal(t, 2, cfg.NumGPUs)
	assert.Equal(t, "prod", cfg.Mode)
}
