package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// WithEnv applies environment variable overrides.
//
// Library:
//
//	KOEL_HOST        - Library base URL (required)
//	KOEL_APP_KEY     - Library application key (required)
//	KOEL_TIMEOUT     - Request timeout (default: 30s)
//	KOEL_USER_AGENT  - User-Agent header
//
// Storage:
//
//	SONGSYNC_STORAGE      - "s3" (default), "fs" or "memory"
//	SONGSYNC_FS_BASE_DIR  - Root for fs storage, objects at <dir>/<bucket>/<key>
//	AWS_REGION, AWS_S3_ENDPOINT, AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY,
//	AWS_S3_USE_PATH_STYLE - S3 and MinIO settings
//
// Runtime:
//
//	SONGSYNC_TEMP_DIR, LOG_LEVEL, LOG_FORMAT, PORT, WEBHOOK_TOKEN
func WithEnv() Option {
	return func(c *Config) error {
		if err := cleanenv.ReadEnv(c); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}
		return nil
	}
}

// WithFile reads a YAML (or JSON, TOML, .env) file. Environment variables
// still take precedence over file values.
func WithFile(path string) Option {
	return func(c *Config) error {
		if path == "" {
			return nil
		}
		if err := cleanenv.ReadConfig(path, c); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return nil
	}
}

// EnvDescription lists the supported environment variables.
func EnvDescription() (string, error) {
	var c Config
	return cleanenv.GetDescription(&c, nil)
}
