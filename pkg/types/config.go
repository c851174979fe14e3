package types

// Config represents the overall application configuration
type Config struct {
	Server      ServerConfig  `yaml:"server" json:"server"`
	Storage     StorageConfig `yaml:"storage" json:"storage"`
	Fetch       FetchConfig   `yaml:"fetch" json:"fetch"`
	Cache       CacheConfig   `yaml:"cache" json:"cache"`
	Log         LogConfig     `yaml:"log" json:"log"`
	SourcesFile string        `yaml:"sources_file" json:"sources_file"` // optional YAML list of sources seeded at start
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host         string `yaml:"host" json:"host"`
	Port         int    `yaml:"port" json:"port"`
	ReadTimeout  int    `yaml:"read_timeout" json:"read_timeout"`   // seconds
	WriteTimeout int    `yaml:"write_timeout" json:"write_timeout"` // seconds
}

// StorageConfig defines storage adapter settings
type StorageConfig struct {
	Adapter string           `yaml:"adapter" json:"adapter"` // "local" or "s3"
	Local   LocalStorageOpts `yaml:"local" json:"local"`
	S3      S3StorageOpts    `yaml:"s3" json:"s3"`
}

// LocalStorageOpts configures the local filesystem adapter
type LocalStorageOpts struct {
	BasePath string `yaml:"base_path" json:"base_path"`
}

// S3StorageOpts configures the S3-compatible adapter
type S3StorageOpts struct {
	Endpoint        string `yaml:"endpoint" json:"endpoint"`
	Region          string `yaml:"region" json:"region"`
	Bucket          string `yaml:"bucket" json:"bucket"`
	Prefix          string `yaml:"prefix" json:"prefix"`
	AccessKeyID     string `yaml:"access_key_id" json:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key" json:"secret_access_key"`
}

// FetchConfig controls the document fetcher
type FetchConfig struct {
	TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds"`
	UserAgent      string `yaml:"user_agent" json:"user_agent"`
}

// CacheConfig controls background chapter caching
type CacheConfig struct {
	MaxCachedChapters int `yaml:"max_cached_chapters" json:"max_cached_chapters"`
	MaxContentLength  int `yaml:"max_content_length" json:"max_content_length"` // runes
	InitialDelayMs    int `yaml:"initial_delay_ms" json:"initial_delay_ms"`
	MaxRetries        int `yaml:"max_retries" json:"max_retries"`
	RetryBackoffMs    int `yaml:"retry_backoff_ms" json:"retry_backoff_ms"`
	Workers           int `yaml:"workers" json:"workers"`
}

// LogConfig controls the zerolog setup
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`   // debug, info, warn, error
	Format string `yaml:"format" json:"format"` // console or json
}
