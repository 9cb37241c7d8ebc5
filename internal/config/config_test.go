package config_test

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mbari-org/dettrackd/internal/config"
)

func TestSetDefaultsFillsZeroValues(t *testing.T) {
	c := &config.Config{}
	c.SetDefaults()

	assert.Equal(t, "models", c.Minio.ModelPrefix)
	assert.Equal(t, "videos", c.Minio.VideoPrefix)
	assert.Equal(t, "tracks", c.Minio.TrackPrefix)
	assert.NotEmpty(t, c.Defaults.Args)
	assert.Equal(t, 10, c.Monitors.Docker.CheckEvery)
	assert.Equal(t, "strongsort_track_config", c.Monitors.Docker.StrongsortTrackConfig)
	assert.Equal(t, 60, c.Monitors.Models.CheckEvery)
	assert.Equal(t, ".", c.Database.Path)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, "console", c.Log.Format)
	assert.Equal(t, "dev", c.Mode)
}

func TestSetDefaultsPreservesExplicitValues(t *testing.T) {
	c := &config.Config{Minio: config.MinioConfig{ModelPrefix: "custom-models"}}
	c.SetDefaults()
	assert.Equal(t, "custom-models", c.Minio.ModelPrefix)
}

func TestDockerMonitorEngineSelectsDefaultOnNonArm64(t *testing.T) {
	if runtime.GOARCH == "arm64" {
		t.Skip("host is arm64; default-arch assertion does not apply")
	}
	d := config.DockerMonitorConfig{StrongsortContainer: "amd64-image", StrongsortContainerArm64: "arm64-image"}
	assert.Equal(t, "amd64-image", d.Engine())
}

func TestDockerMonitorEngineFallsBackWhenArm64Unset(t *testing.T) {
	d := config.DockerMonitorConfig{StrongsortContainer: "amd64-image"}
	assert.Equal(t, "amd64-image", d.Engine())
}

func TestDatabaseFile(t *testing.T) {
	d := config.DatabaseConfig{Path: "/var/lib/dettrackd"}
	assert.Equal(t, "/var/lib/dettrackd/sqlite_job_cache_docker.db", d.DatabaseFile())
}

func TestValidateRequiresRootBucket(t *testing.T) {
	c := &config.Config{}
	c.SetDefaults()
	c.Minio.AccessKey = "key"
	c.Minio.SecretKey = "secret"
	err := c.Validate(false)
	assert.ErrorContains(t, err, "root_bucket")
}

func TestValidateRequiresCredentials(t *testing.T) {
	c := &config.Config{}
	c.SetDefaults()
	c.Minio.RootBucket = "videos"
	err := c.Validate(false)
	assert.ErrorContains(t, err, "credentials")
}

func TestValidatePassesWithoutMonitorsWhenNotRequired(t *testing.T) {
	c := &config.Config{}
	c.SetDefaults()
	c.Minio.RootBucket = "videos"
	c.Minio.AccessKey = "key"
	c.Minio.SecretKey = "secret"
	assert.NoError(t, c.Validate(false))
}

func TestValidateRequiresMonitorFieldsWhenRequested(t *testing.T) {
	c := &config.Config{}
	c.SetDefaults()
	c.Minio.RootBucket = "videos"
	c.Minio.AccessKey = "key"
	c.Minio.SecretKey = "secret"

	err := c.Validate(true)
	assert.ErrorContains(t, err, "strongsort_container")

	c.Monitors.Docker.StrongsortContainer = "tracker:latest"
	err = c.Validate(true)
	assert.ErrorContains(t, err, "monitors.models.path")

	c.Monitors.Models.Path = "/models"
	assert.NoError(t, c.Validate(true))
}
