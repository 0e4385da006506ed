package config

import (
	"fmt"
	"time"
)

// WithLibrary sets the library URL and application key
func WithLibrary(host, appKey string) Option {
	return func(c *Config) error {
		c.Library.Host = host
		c.Library.AppKey = appKey
		return nil
	}
}

// WithLibraryTimeout sets the library request timeout
func WithLibraryTimeout(d time.Duration) Option {
	return func(c *Config) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive, got: %s", d)
		}
		c.Library.Timeout = d
		return nil
	}
}

// WithMemoryStorage selects the in-memory object store
func WithMemoryStorage() Option {
	return func(c *Config) error {
		c.Storage.Type = StorageMemory
		return nil
	}
}

// WithFilesystemStorage selects the filesystem object store
func WithFilesystemStorage(baseDir string) Option {
	return func(c *Config) error {
		if baseDir == "" {
			return fmt.Errorf("base directory cannot be empty")
		}
		c.Storage.Type = StorageFS
		c.Storage.BaseDir = baseDir
		return nil
	}
}

// WithS3Storage selects S3 with an optional custom endpoint
func WithS3Storage(region, endpoint string, usePathStyle bool) Option {
	return func(c *Config) error {
		c.Storage.Type = StorageS3
		if region != "" {
			c.Storage.Region = region
		}
		c.Storage.Endpoint = endpoint
		c.Storage.UsePathStyle = usePathStyle
		return nil
	}
}

// WithTempDir sets the staging directory
func WithTempDir(dir string) Option {
	return func(c *Config) error {
		c.TempDir = dir
		return nil
	}
}

// WithLogging sets level and format
func WithLogging(level, format string) Option {
	return func(c *Config) error {
		if level != "" {
			c.Log.Level = level
		}
		if format != "" {
			c.Log.Format = format
		}
		return nil
	}
}

// WithPort sets the webhook server port
func WithPort(port string) Option {
	return func(c *Config) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Server.Port = port
		return nil
	}
}

// WithWebhookToken sets the bearer token required by the webhook
func WithWebhookToken(token string) Option {
	return func(c *Config) error {
		c.Server.Token = token
		return nil
	}
}
