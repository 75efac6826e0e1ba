package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("CONFIG_PATH", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.Paths.ContentDir != "content" {
			t.Errorf("Expected content dir 'content', got '%s'", cfg.Paths.ContentDir)
		}
		if cfg.Build.Source != SourceContent {
			t.Errorf("Expected build source '%s', got '%s'", SourceContent, cfg.Build.Source)
		}
		if cfg.Metrics.RetentionDays != 30 {
			t.Errorf("Expected retention 30, got %d", cfg.Metrics.RetentionDays)
		}
	})

	t.Run("YAMLWithEnvOverride", func(t *testing.T) {
		dir := t.TempDir()
		path := writeYAML(t, dir, `
paths:
  weeks_dir: "plans"
  db_path: "data/meals.db"
build:
  source: "store"
log:
  level: "debug"
  format: "json"
`)
		t.Setenv("CONFIG_PATH", path)
		t.Setenv("MEALS_DIST_DIR", "public")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.Paths.WeeksDir != "plans" {
			t.Errorf("Expected weeks dir 'plans', got '%s'", cfg.Paths.WeeksDir)
		}
		if cfg.Paths.DistDir != "public" {
			t.Errorf("Expected dist dir from env 'public', got '%s'", cfg.Paths.DistDir)
		}
		if cfg.Build.Source != SourceStore {
			t.Errorf("Expected build source 'store', got '%s'", cfg.Build.Source)
		}
		if cfg.Log.Format != "json" {
			t.Errorf("Expected log format 'json', got '%s'", cfg.Log.Format)
		}
	})

	t.Run("MissingExplicitFile", func(t *testing.T) {
		t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))

		_, err := Load()
		if err == nil {
			t.Fatal("Expected an error for a missing CONFIG_PATH file, got nil")
		}
	})

	t.Run("UnknownSource", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("CONFIG_PATH", "")
		t.Setenv("MEALS_BUILD_SOURCE", "ftp")

		_, err := Load()
		if err == nil {
			t.Fatal("Expected an error for an unknown build source, got nil")
		}
		if !strings.Contains(err.Error(), "build.source") {
			t.Errorf("Expected error to name build.source, got '%v'", err)
		}
	})
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Paths:   PathsConfig{WeeksDir: "weeks", ContentDir: "content", DistDir: "dist", DBPath: "meals.db"},
			Build:   BuildConfig{Source: SourceContent},
			Log:     LogConfig{Level: "info", Format: "text"},
			Metrics: MetricsConfig{RetentionDays: 30},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"empty content dir", func(c *Config) { c.Paths.ContentDir = " " }, "paths.content_dir must not be empty"},
		{"empty db path", func(c *Config) { c.Paths.DBPath = "" }, "paths.db_path must not be empty"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"zero retention", func(c *Config) { c.Metrics.RetentionDays = 0 }, "metrics.retention_days"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing '%s', got '%v'", tt.wantErr, err)
			}
		})
	}
}
