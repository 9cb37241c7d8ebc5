// Package config loads dettrackd's YAML configuration file and applies
// environment variable overrides, the way crawler/internal/config does in
// the teacher repo.
package config

import (
	"fmt"
	"runtime"
)

// MinioConfig describes the object-store endpoint and key layout.
type MinioConfig struct {
	Endpoint            string `yaml:"-"`
	ExternalEndpoint    string `yaml:"-"`
	AccessKey           string `yaml:"-"`
	SecretKey           string `yaml:"-"`
	UseSSL              bool   `yaml:"-"`
	Region              string `yaml:"-"`
	RootBucket          string `yaml:"root_bucket"`
	ModelPrefix         string `yaml:"model_prefix"`
	VideoPrefix         string `yaml:"video_prefix"`
	TrackPrefix         string `yaml:"track_prefix"`
}

// DefaultsConfig carries fallback values substituted when the caller omits
// optional request fields.
type DefaultsConfig struct {
	Args     string `yaml:"args"`
	VideoURL string `yaml:"video_url"`
}

// DockerMonitorConfig configures the Scheduler's polling cadence and the
// container image / tracker-config keys it launches.
type DockerMonitorConfig struct {
	CheckEvery               int    `yaml:"check_every"`
	StrongsortContainer      string `yaml:"strongsort_container"`
	StrongsortContainerArm64 string `yaml:"strongsort_container_arm64"`
	StrongsortTrackConfig    string `yaml:"strongsort_track_config"`
}

// ModelsMonitorConfig configures the ModelSyncMonitor.
type ModelsMonitorConfig struct {
	CheckEvery int    `yaml:"check_every"`
	Path       string `yaml:"path"`
}

// MonitorsConfig groups the Dispatcher's two monitors.
type MonitorsConfig struct {
	Docker DockerMonitorConfig  `yaml:"docker"`
	Models ModelsMonitorConfig  `yaml:"models"`
}

// DatabaseConfig locates the sqlite job store file.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LogConfig controls the shared logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the full dettrackd configuration, unmarshalled from YAML with
// environment variables bound on top via viper.
type Config struct {
	Minio    MinioConfig     `yaml:"minio"`
	Defaults DefaultsConfig  `yaml:"defaults"`
	Monitors MonitorsConfig  `yaml:"monitors"`
	Database DatabaseConfig  `yaml:"database"`
	Log      LogConfig       `yaml:"log"`

	// Notify, GPUs, TempDir, Mode and Region are environment-only settings;
	// they have no YAML key because the source system never exposed one.
	NotifyURL string
	NumGPUs   int
	TempDir   string
	Mode      string // "dev" | "prod"
}

// SetDefaults fills zero-valued fields with the system's baked-in
// defaults, mirroring crawler/internal/config/init.go's viper.SetDefault
// calls.
func (c *Config) SetDefaults() {
	if c.Minio.ModelPrefix == "" {
		c.Minio.ModelPrefix = "models"
	}
	if c.Minio.VideoPrefix == "" {
		c.Minio.VideoPrefix = "videos"
	}
	if c.Minio.TrackPrefix == "" {
		c.Minio.TrackPrefix = "tracks"
	}
	if c.Defaults.Args == "" {
		c.Defaults.Args = "--iou-thres 0.5 --conf-thres 0.01 --agnostic-nms --max-det 100"
	}
	if c.Monitors.Docker.CheckEvery == 0 {
		c.Monitors.Docker.CheckEvery = 10
	}
	if c.Monitors.Docker.StrongsortTrackConfig == "" {
		c.Monitors.Docker.StrongsortTrackConfig = "strongsort_track_config"
	}
	if c.Monitors.Models.CheckEvery == 0 {
		c.Monitors.Models.CheckEvery = 60
	}
	if c.Database.Path == "" {
		c.Database.Path = "."
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Mode == "" {
		c.Mode = "dev"
	}
	if c.NumGPUs < 0 {
		c.NumGPUs = 0
	}
}

// Engine selects the container image for the docker monitor. It resolves
// the arm64 variant from the original source's conf/init.go: the arm64 key
// wins when the host architecture is arm64, otherwise the default image is
// used.
func (c DockerMonitorConfig) Engine() string {
	if runtime.GOARCH == "arm64" && c.StrongsortContainerArm64 != "" {
		return c.StrongsortContainerArm64
	}
	return c.StrongsortContainer
}

// DatabaseFile is the fully-qualified sqlite file path, per §6 "Persisted
// state": "{database.path}/sqlite_job_cache_docker.db".
func (d DatabaseConfig) DatabaseFile() string {
	return fmt.Sprintf("%s/sqlite_job_cache_docker.db", d.Path)
}

// Validate checks the subset of fields a given command actually needs.
// Every command needs minio.root_bucket and the object-store credentials;
// with requireMonitors (the dispatcher) it also needs a container image and
// monitors.models.path. The database and defaults blocks are not checked.
func (c *Config) Validate(requireMonitors bool) error {
	if c.Minio.RootBucket == "" {
		return fmt.Errorf("config: minio.root_bucket is required")
	}
	if c.Minio.AccessKey == "" || c.Minio.SecretKey == "" {
		return fmt.Errorf("config: object-store credentials are required")
	}
	if requireMonitors {
		if c.Monitors.Docker.Engine() == "" {
			return fmt.Errorf("config: monitors.docker.strongsort_container is required")
		}
		if c.Monitors.Models.Path == "" {
			return fmt.Errorf("config: monitors.models.path is required")
		}
	}
	return nil
}
