package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Load reads the YAML config file at path (if it exists), loads a .env file
// from the working directory if present, binds the documented environment
// variables, and returns the Config with defaults applied. It does not call
// Validate; callers do that for their own command. Mirrors the sequence in
// crawler/internal/config/init.go: loadEnvFile -> setupViper -> setDefaults
// -> readConfigFile -> bindEnvironmentVariables.
//
// The YAML file is decoded directly with gopkg.in/yaml.v3 rather than
// handed to viper's Unmarshal: viper decodes via mapstructure against its
// default tag name, which never looks at this package's yaml struct tags
// and does not fold snake_case keys like root_bucket into RootBucket. Like
// crawler/internal/config/minio/config.go, environment overrides are still
// applied through viper, one explicit Get per documented variable
// (bindEnvironment below) — that path never relied on struct-tag decoding
// in the first place.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // optional; absence is not an error

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.SetDefaults()

	v := viper.New()
	v.AutomaticEnv()
	bindEnvironment(v, cfg)

	return cfg, nil
}

// bindEnvironment applies the environment-variable overrides listed in §6.
// These are plain os-env reads rather than viper.Unmarshal targets because
// several (NOTIFY_URL, MODE, NUM_GPUS) have no YAML key at all.
func bindEnvironment(v *viper.Viper, cfg *Config) {
	if s := v.GetString("MINIO_ENDPOINT_URL"); s != "" {
		cfg.Minio.Endpoint = s
	}
	if s := v.GetString("MINIO_EXTERNAL_ENDPOINT_URL"); s != "" {
		cfg.Minio.ExternalEndpoint = s
	}
	if s := v.GetString("MINIO_ACCESS_KEY"); s != "" {
		cfg.Minio.AccessKey = s
	}
	if s := v.GetString("MINIO_SECRET_KEY"); s != "" {
		cfg.Minio.SecretKey = s
	}
	if s := v.GetString("ROOT_BUCKET"); s != "" {
		cfg.Minio.RootBucket = s
	}
	if s := v.GetString("TRACK_PREFIX"); s != "" {
		cfg.Minio.TrackPrefix = s
	}
	if s := v.GetString("MODEL_PREFIX"); s != "" {
		cfg.Minio.ModelPrefix = s
	}
	if s := v.GetString("MODEL_DIR"); s != "" {
		cfg.Monitors.Models.Path = s
	}
	if s := v.GetString("DATABASE_DIR"); s != "" {
		cfg.Database.Path = s
	}
	if s := v.GetString("NOTIFY_URL"); s != "" {
		cfg.NotifyURL = s
	}
	if n := v.GetInt("NUM_GPUS"); n != 0 {
		cfg.NumGPUs = n
	}
	if s := v.GetString("TEMP_DIR"); s != "" {
		cfg.TempDir = s
	}
	if s := v.GetString("MODE"); s != "" {
		cfg.Mode = s
	}
	if s := v.GetString("AWS_DEFAULT_REGION"); s != "" {
		cfg.Minio.Region = s
	}
}
