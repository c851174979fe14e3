package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/unalkalkan/NovelReader/internal/cache"
	"github.com/unalkalkan/NovelReader/internal/fetch"
	"github.com/unalkalkan/NovelReader/pkg/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "test.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad(t *testing.T) {
	configPath := writeConfig(t, `
server:
  host: "localhost"
  port: 9090
  read_timeout: 10
  write_timeout: 10

storage:
  adapter: "local"
  local:
    base_path: "/tmp/test"

fetch:
  timeout_seconds: 3

cache:
  max_cached_chapters: 5
  workers: 2

log:
  level: debug
  format: json

sources_file: "/etc/novelreader/sources.yaml"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Host != "localhost" {
		t.Errorf("Expected host 'localhost', got '%s'", cfg.Server.Host)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Storage.Local.BasePath != "/tmp/test" {
		t.Errorf("Expected base_path '/tmp/test', got '%s'", cfg.Storage.Local.BasePath)
	}
	if cfg.Fetch.TimeoutSeconds != 3 {
		t.Errorf("Expected fetch timeout 3, got %d", cfg.Fetch.TimeoutSeconds)
	}
	if cfg.Fetch.UserAgent != fetch.DefaultUserAgent {
		t.Errorf("Expected default user agent, got '%s'", cfg.Fetch.UserAgent)
	}
	if cfg.Cache.MaxCachedChapters != 5 || cfg.Cache.Workers != 2 {
		t.Errorf("Unexpected cache config %+v", cfg.Cache)
	}
	if cfg.Cache.MaxContentLength != cache.DefaultMaxContentLength {
		t.Errorf("Expected default max content length, got %d", cfg.Cache.MaxContentLength)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Unexpected log config %+v", cfg.Log)
	}
	if cfg.SourcesFile != "/etc/novelreader/sources.yaml" {
		t.Errorf("Unexpected sources_file '%s'", cfg.SourcesFile)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
	if _, err := Load(writeConfig(t, "server: [")); err == nil {
		t.Error("Expected error for malformed YAML")
	}
	if _, err := Load(writeConfig(t, "storage:\n  adapter: ftp\n")); err == nil {
		t.Error("Expected validation error for unknown adapter")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*types.Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			modify:  func(c *types.Config) {},
			wantErr: false,
		},
		{
			name: "invalid port",
			modify: func(c *types.Config) {
				c.Server.Port = 0
			},
			wantErr: true,
		},
		{
			name: "invalid storage adapter",
			modify: func(c *types.Config) {
				c.Storage.Adapter = "invalid"
			},
			wantErr: true,
		},
		{
			name: "missing local base path",
			modify: func(c *types.Config) {
				c.Storage.Adapter = "local"
				c.Storage.Local.BasePath = ""
			},
			wantErr: true,
		},
		{
			name: "relative local base path",
			modify: func(c *types.Config) {
				c.Storage.Local.BasePath = "data"
			},
			wantErr: true,
		},
		{
			name: "missing s3 bucket",
			modify: func(c *types.Config) {
				c.Storage.Adapter = "s3"
				c.Storage.S3.Bucket = ""
			},
			wantErr: true,
		},
		{
			name: "invalid log format",
			modify: func(c *types.Config) {
				c.Log.Format = "xml"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefault()
			tt.modify(cfg)
			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_FillsDefaults(t *testing.T) {
	cfg := GetDefault()
	cfg.Fetch = types.FetchConfig{}
	cfg.Cache = types.CacheConfig{InitialDelayMs: -1, MaxRetries: -1}

	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Fetch.TimeoutSeconds != 10 {
		t.Errorf("Expected fetch timeout 10, got %d", cfg.Fetch.TimeoutSeconds)
	}
	if cfg.Cache.MaxCachedChapters != 10 || cfg.Cache.MaxContentLength != 100000 {
		t.Errorf("Unexpected cache limits %+v", cfg.Cache)
	}
	if cfg.Cache.InitialDelayMs != 1000 || cfg.Cache.MaxRetries != cache.DefaultMaxRetries {
		t.Errorf("Unexpected cache timing %+v", cfg.Cache)
	}
}

func TestEnvOverrides(t *testing.T) {
	configPath := writeConfig(t, `
server:
  host: "localhost"
  port: 8080
storage:
  adapter: "local"
  local:
    base_path: "/tmp/test"
`)

	t.Setenv("NR_SERVER_PORT", "9999")
	t.Setenv("NR_STORAGE_LOCAL_BASE_PATH", "/tmp/override")
	t.Setenv("NR_FETCH_USER_AGENT", "test-agent")
	t.Setenv("NR_LOG_LEVEL", "warn")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Expected port 9999 from env override, got %d", cfg.Server.Port)
	}
	if cfg.Storage.Local.BasePath != "/tmp/override" {
		t.Errorf("Expected base_path '/tmp/override' from env override, got '%s'", cfg.Storage.Local.BasePath)
	}
	if cfg.Fetch.UserAgent != "test-agent" {
		t.Errorf("Expected user agent from env override, got '%s'", cfg.Fetch.UserAgent)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Expected log level from env override, got '%s'", cfg.Log.Level)
	}
}

func TestGetDefault(t *testing.T) {
	cfg := GetDefault()
	if cfg == nil {
		t.Fatal("GetDefault() returned nil")
	}
	if cfg.Server.Port <= 0 {
		t.Error("Default config has invalid port")
	}
	if cfg.Storage.Adapter == "" {
		t.Error("Default config has empty storage adapter")
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("Default config does not validate: %v", err)
	}
}
