package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/unalkalkan/NovelReader/internal/cache"
	"github.com/unalkalkan/NovelReader/internal/fetch"
	"github.com/unalkalkan/NovelReader/pkg/types"
	"gopkg.in/yaml.v3"
)

// Load reads and parses the configuration file.
// Values missing from the file keep their defaults, and environment
// variables prefixed with NR_ override both.
func Load(configPath string) (*types.Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := GetDefault()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid and fills in defaults for
// numeric settings that were left unset
func Validate(cfg *types.Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}

	if cfg.Storage.Adapter != "local" && cfg.Storage.Adapter != "s3" {
		return fmt.Errorf("invalid storage adapter: %s (must be 'local' or 's3')", cfg.Storage.Adapter)
	}

	if cfg.Storage.Adapter == "local" {
		if cfg.Storage.Local.BasePath == "" {
			return fmt.Errorf("local storage base_path is required")
		}
		if !filepath.IsAbs(cfg.Storage.Local.BasePath) {
			return fmt.Errorf("local storage base_path must be absolute: %s", cfg.Storage.Local.BasePath)
		}
	}

	if cfg.Storage.Adapter == "s3" {
		if cfg.Storage.S3.Bucket == "" {
			return fmt.Errorf("s3 bucket is required")
		}
		if cfg.Storage.S3.Region == "" {
			return fmt.Errorf("s3 region is required")
		}
	}

	switch strings.ToLower(cfg.Log.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("invalid log format: %s (must be 'console' or 'json')", cfg.Log.Format)
	}

	if cfg.Fetch.TimeoutSeconds <= 0 {
		cfg.Fetch.TimeoutSeconds = int(fetch.DefaultTimeout.Seconds())
	}
	if cfg.Fetch.UserAgent == "" {
		cfg.Fetch.UserAgent = fetch.DefaultUserAgent
	}

	if cfg.Cache.MaxCachedChapters <= 0 {
		cfg.Cache.MaxCachedChapters = cache.DefaultMaxChapters
	}
	if cfg.Cache.MaxContentLength <= 0 {
		cfg.Cache.MaxContentLength = cache.DefaultMaxContentLength
	}
	if cfg.Cache.InitialDelayMs < 0 {
		cfg.Cache.InitialDelayMs = int(cache.DefaultInitialDelay.Milliseconds())
	}
	if cfg.Cache.MaxRetries < 0 {
		cfg.Cache.MaxRetries = cache.DefaultMaxRetries
	}
	if cfg.Cache.RetryBackoffMs <= 0 {
		cfg.Cache.RetryBackoffMs = int(cache.DefaultRetryBackoff.Milliseconds())
	}
	if cfg.Cache.Workers <= 0 {
		cfg.Cache.Workers = cache.DefaultWorkers
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides
// Environment variables should be prefixed with NR_ (NovelReader)
func applyEnvOverrides(cfg *types.Config) {
	// Server overrides
	if val := os.Getenv("NR_SERVER_HOST"); val != "" {
		cfg.Server.Host = val
	}
	if val := os.Getenv("NR_SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &cfg.Server.Port)
	}

	// Storage overrides
	if val := os.Getenv("NR_STORAGE_ADAPTER"); val != "" {
		cfg.Storage.Adapter = val
	}
	if val := os.Getenv("NR_STORAGE_LOCAL_BASE_PATH"); val != "" {
		cfg.Storage.Local.BasePath = val
	}
	if val := os.Getenv("NR_STORAGE_S3_BUCKET"); val != "" {
		cfg.Storage.S3.Bucket = val
	}
	if val := os.Getenv("NR_STORAGE_S3_REGION"); val != "" {
		cfg.Storage.S3.Region = val
	}
	if val := os.Getenv("NR_STORAGE_S3_ENDPOINT"); val != "" {
		cfg.Storage.S3.Endpoint = val
	}
	if val := os.Getenv("NR_STORAGE_S3_PREFIX"); val != "" {
		cfg.Storage.S3.Prefix = val
	}
	if val := os.Getenv("NR_STORAGE_S3_ACCESS_KEY_ID"); val != "" {
		cfg.Storage.S3.AccessKeyID = val
	}
	if val := os.Getenv("NR_STORAGE_S3_SECRET_ACCESS_KEY"); val != "" {
		cfg.Storage.S3.SecretAccessKey = val
	}

	// Fetch overrides
	if val := os.Getenv("NR_FETCH_TIMEOUT_SECONDS"); val != "" {
		fmt.Sscanf(val, "%d", &cfg.Fetch.TimeoutSeconds)
	}
	if val := os.Getenv("NR_FETCH_USER_AGENT"); val != "" {
		cfg.Fetch.UserAgent = val
	}

	// Cache overrides
	if val := os.Getenv("NR_CACHE_MAX_CACHED_CHAPTERS"); val != "" {
		fmt.Sscanf(val, "%d", &cfg.Cache.MaxCachedChapters)
	}
	if val := os.Getenv("NR_CACHE_WORKERS"); val != "" {
		fmt.Sscanf(val, "%d", &cfg.Cache.Workers)
	}

	// Log overrides
	if val := os.Getenv("NR_LOG_LEVEL"); val != "" {
		cfg.Log.Level = val
	}
	if val := os.Getenv("NR_LOG_FORMAT"); val != "" {
		cfg.Log.Format = val
	}

	if val := os.Getenv("NR_SOURCES_FILE"); val != "" {
		cfg.SourcesFile = val
	}
}

// GetDefault returns a default configuration
func GetDefault() *types.Config {
	return &types.Config{
		Server: types.ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  15,
			WriteTimeout: 30,
		},
		Storage: types.StorageConfig{
			Adapter: "local",
			Local: types.LocalStorageOpts{
				BasePath: "/var/lib/novelreader/storage",
			},
		},
		Fetch: types.FetchConfig{
			TimeoutSeconds: int(fetch.DefaultTimeout.Seconds()),
			UserAgent:      fetch.DefaultUserAgent,
		},
		Cache: types.CacheConfig{
			MaxCachedChapters: cache.DefaultMaxChapters,
			MaxContentLength:  cache.DefaultMaxContentLength,
			InitialDelayMs:    int(cache.DefaultInitialDelay.Milliseconds()),
			MaxRetries:        cache.DefaultMaxRetries,
			RetryBackoffMs:    int(cache.DefaultRetryBackoff.Milliseconds()),
			Workers:           cache.DefaultWorkers,
		},
		Log: types.LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
