// Package config loads runtime configuration for the multipart binaries.
//
// Values come from, in increasing precedence: built-in defaults, an optional
// YAML/JSON/TOML file, a .env file in the working directory, and MULTIPART_*
// environment variables (dots become underscores, so storage.bucket is read
// from MULTIPART_STORAGE_BUCKET).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/input-output-hk/catalyst-forge-libs/multipart/sizes"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "MULTIPART"

// Storage backends.
const (
	BackendS3    = "s3"
	BackendMinio = "minio"
	BackendLocal = "local"
)

// Config holds all runtime configuration.
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Upload  UploadConfig  `mapstructure:"upload"`
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
}

// StorageConfig selects and addresses the object store.
type StorageConfig struct {
	Backend        string `mapstructure:"backend"`
	Bucket         string `mapstructure:"bucket"`
	Endpoint       string `mapstructure:"endpoint"`
	Region         string `mapstructure:"region"`
	AccessKey      string `mapstructure:"access_key"`
	SecretKey      string `mapstructure:"secret_key"`
	UseSSL         bool   `mapstructure:"use_ssl"`
	ForcePathStyle bool   `mapstructure:"force_path_style"`

	// Root is the directory of the local backend.
	Root string `mapstructure:"root"`
}

// UploadConfig tunes upload planning.
type UploadConfig struct {
	PartSize      int64         `mapstructure:"part_size"`
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Address        string   `mapstructure:"address"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration. path may be empty, in which case only defaults,
// .env and the environment are used.
func Load(path string) (*Config, error) {
	// A missing .env is the normal case outside development
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// env values arrive as one comma-separated string
	cfg.Server.AllowedOrigins = splitList(strings.Join(cfg.Server.AllowedOrigins, ","))

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.backend", BackendS3)
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.use_ssl", true)
	v.SetDefault("storage.force_path_style", false)
	v.SetDefault("storage.root", "")
	v.SetDefault("upload.part_size", 64*sizes.MiB)
	v.SetDefault("upload.presign_expiry", time.Hour)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var problems []string

	switch c.Storage.Backend {
	case BackendS3:
		if c.Storage.Bucket == "" {
			problems = append(problems, "storage.bucket is required")
		}
	case BackendMinio:
		if c.Storage.Bucket == "" {
			problems = append(problems, "storage.bucket is required")
		}
		if c.Storage.Endpoint == "" {
			problems = append(problems, "storage.endpoint is required for minio")
		}
		if c.Storage.AccessKey == "" || c.Storage.SecretKey == "" {
			problems = append(problems, "storage.access_key and storage.secret_key are required for minio")
		}
	case BackendLocal:
		if c.Storage.Root == "" {
			problems = append(problems, "storage.root is required for local storage")
		}
	default:
		problems = append(problems, fmt.Sprintf("storage.backend %q is not one of s3, minio, local", c.Storage.Backend))
	}

	if c.Upload.PartSize <= 0 {
		problems = append(problems, "upload.part_size must be positive")
	}
	if c.Upload.PresignExpiry < time.Second || c.Upload.PresignExpiry > 7*24*time.Hour {
		problems = append(problems, "upload.presign_expiry must be between 1s and 168h")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		problems = append(problems, fmt.Sprintf("log.format %q is not one of text, json", c.Log.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

// ParseLevel maps a level name onto a slog level.
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return 0, errors.New("log.level must be one of debug, info, warn, error")
	}
	return l, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
