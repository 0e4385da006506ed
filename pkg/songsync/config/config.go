package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/tendant/simple-song-sync/pkg/songsync"
	"github.com/tendant/simple-song-sync/pkg/songsync/library"
	fsstorage "github.com/tendant/simple-song-sync/pkg/songsync/storage/fs"
	memorystorage "github.com/tendant/simple-song-sync/pkg/songsync/storage/memory"
	s3storage "github.com/tendant/simple-song-sync/pkg/songsync/storage/s3"
)

// Storage types
const (
	StorageS3     = "s3"
	StorageFS     = "fs"
	StorageMemory = "memory"
)

// Option applies configuration to a Config instance.
type Option func(*Config) error

// Load constructs a Config by applying the supplied options on top of defaults.
func Load(opts ...Option) (*Config, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() Config {
	return Config{
		Library: LibraryConfig{
			Timeout:   30 * time.Second,
			UserAgent: "simple-song-sync",
		},
		Storage: StorageConfig{
			Type:   StorageS3,
			Region: "us-east-1",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Server: ServerConfig{
			Port: "8080",
		},
	}
}

// Config represents the handler configuration
type Config struct {
	Library LibraryConfig `yaml:"library"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	Server  ServerConfig  `yaml:"server"`

	// Directory for staged objects; empty uses the OS temp dir
	TempDir string `yaml:"temp_dir" env:"SONGSYNC_TEMP_DIR" env-description:"Directory objects are staged in"`
}

// LibraryConfig describes the remote media library
type LibraryConfig struct {
	Host      string        `yaml:"host" env:"KOEL_HOST" env-description:"Library base URL"`
	AppKey    string        `yaml:"app_key" env:"KOEL_APP_KEY" env-description:"Library application key"`
	Timeout   time.Duration `yaml:"timeout" env:"KOEL_TIMEOUT" env-default:"30s" env-description:"Library request timeout"`
	UserAgent string        `yaml:"user_agent" env:"KOEL_USER_AGENT" env-default:"simple-song-sync" env-description:"User-Agent for library requests"`
}

// StorageConfig selects and configures the object store
type StorageConfig struct {
	Type            string `yaml:"type" env:"SONGSYNC_STORAGE" env-default:"s3" env-description:"Object store: s3, fs or memory"`
	BaseDir         string `yaml:"base_dir" env:"SONGSYNC_FS_BASE_DIR" env-description:"Root directory for the fs store"`
	Region          string `yaml:"region" env:"AWS_REGION" env-default:"us-east-1" env-description:"AWS region"`
	Endpoint        string `yaml:"endpoint" env:"AWS_S3_ENDPOINT" env-description:"Custom S3 endpoint (MinIO)"`
	AccessKeyID     string `yaml:"access_key_id" env:"AWS_ACCESS_KEY_ID" env-description:"Static access key"`
	SecretAccessKey string `yaml:"secret_access_key" env:"AWS_SECRET_ACCESS_KEY" env-description:"Static secret key"`
	UsePathStyle    bool   `yaml:"use_path_style" env:"AWS_S3_USE_PATH_STYLE" env-description:"Path-style S3 addressing"`
}

// LogConfig configures the process logger
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info" env-description:"debug, info, warn or error"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json" env-description:"json, text or pretty"`
}

// ServerConfig configures the webhook server
type ServerConfig struct {
	Port  string `yaml:"port" env:"PORT" env-default:"8080" env-description:"Webhook listen port"`
	Token string `yaml:"token" env:"WEBHOOK_TOKEN" env-description:"Bearer token required on /events"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Library.Host == "" {
		return errors.New("library host is required (KOEL_HOST)")
	}
	u, err := url.Parse(c.Library.Host)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("library host must be an http(s) URL, got %q", c.Library.Host)
	}
	if c.Library.AppKey == "" {
		return errors.New("library app key is required (KOEL_APP_KEY)")
	}
	if c.Library.Timeout <= 0 {
		return errors.New("library timeout must be positive")
	}

	switch c.Storage.Type {
	case StorageS3, StorageMemory:
	case StorageFS:
		if c.Storage.BaseDir == "" {
			return errors.New("base_dir is required for fs storage (SONGSYNC_FS_BASE_DIR)")
		}
	default:
		return fmt.Errorf("storage type must be 's3', 'fs' or 'memory', got: %s", c.Storage.Type)
	}

	switch c.Log.Format {
	case "json", "text", "pretty":
	default:
		return fmt.Errorf("log format must be 'json', 'text' or 'pretty', got: %s", c.Log.Format)
	}

	if c.Server.Port == "" {
		return errors.New("port is required")
	}

	return nil
}

// Redacted returns a copy with secrets masked, for display.
func (c Config) Redacted() Config {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "***"
	}
	c.Library.AppKey = mask(c.Library.AppKey)
	c.Storage.SecretAccessKey = mask(c.Storage.SecretAccessKey)
	c.Server.Token = mask(c.Server.Token)
	return c
}

// BuildObjectStore creates the configured object store
func (c *Config) BuildObjectStore(ctx context.Context) (songsync.ObjectStore, error) {
	switch c.Storage.Type {
	case StorageMemory:
		return memorystorage.New(), nil
	case StorageFS:
		return fsstorage.New(fsstorage.Config{BaseDir: c.Storage.BaseDir})
	case StorageS3:
		return s3storage.New(ctx, s3storage.Config{
			Region:          c.Storage.Region,
			AccessKeyID:     c.Storage.AccessKeyID,
			SecretAccessKey: c.Storage.SecretAccessKey,
			Endpoint:        c.Storage.Endpoint,
			UsePathStyle:    c.Storage.UsePathStyle,
		})
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}
}

// BuildNotifier creates the library client
func (c *Config) BuildNotifier() (*library.Client, error) {
	return library.New(library.Config{
		BaseURL:   c.Library.Host,
		AppKey:    c.Library.AppKey,
		Timeout:   c.Library.Timeout,
		UserAgent: c.Library.UserAgent,
	}, nil)
}

// BuildHandler wires storage, library client, sink and logger into a
// handler. extra options are applied last and may replace any component.
func (c *Config) BuildHandler(ctx context.Context, logger *slog.Logger, sink songsync.EventSink, extra ...songsync.Option) (*songsync.Handler, error) {
	store, err := c.BuildObjectStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build object store: %w", err)
	}
	notifier, err := c.BuildNotifier()
	if err != nil {
		return nil, fmt.Errorf("failed to build library client: %w", err)
	}

	options := []songsync.Option{
		songsync.WithObjectStore(store),
		songsync.WithNotifier(notifier),
		songsync.WithTempDir(c.TempDir),
		songsync.WithLogger(logger),
	}
	if sink != nil {
		options = append(options, songsync.WithEventSink(sink))
	}
	options = append(options, extra...)

	return songsync.New(options...)
}
