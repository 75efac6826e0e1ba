package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Build sources for the site.
const (
	SourceContent = "content"
	SourceStore   = "store"
)

// Config holds the configuration for the application.
type Config struct {
	Paths   PathsConfig   `yaml:"paths"`
	Build   BuildConfig   `yaml:"build"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// PathsConfig locates the input, output and store files.
type PathsConfig struct {
	WeeksDir     string `yaml:"weeks_dir"     env:"MEALS_WEEKS_DIR"     env-default:"weeks"`
	ContentDir   string `yaml:"content_dir"   env:"MEALS_CONTENT_DIR"   env-default:"content"`
	TemplatesDir string `yaml:"templates_dir" env:"MEALS_TEMPLATES_DIR" env-default:"templates"`
	AssetsDir    string `yaml:"assets_dir"    env:"MEALS_ASSETS_DIR"    env-default:"assets"`
	DistDir      string `yaml:"dist_dir"      env:"MEALS_DIST_DIR"      env-default:"dist"`
	DBPath       string `yaml:"db_path"       env:"MEALS_DB_PATH"       env-default:"meals.db"`
}

// BuildConfig selects where the site build reads weeks from.
type BuildConfig struct {
	Source string `yaml:"source" env:"MEALS_BUILD_SOURCE" env-default:"content"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// MetricsConfig holds run-metric retention.
type MetricsConfig struct {
	RetentionDays int `yaml:"retention_days" env:"MEALS_METRICS_RETENTION_DAYS" env-default:"30"`
}

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults (via env-default tags).
// The YAML file path comes from CONFIG_PATH (fallback "./config.yaml"); a
// missing fallback file is fine, a missing explicit one is an error.
func Load() (*Config, error) {
	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	explicitPath := path != ""
	if !explicitPath {
		path = "./config.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}

// Validate checks the loaded configuration. Load calls it automatically.
func (c *Config) Validate() error {
	required := []struct{ key, value string }{
		{"paths.weeks_dir", c.Paths.WeeksDir},
		{"paths.content_dir", c.Paths.ContentDir},
		{"paths.dist_dir", c.Paths.DistDir},
		{"paths.db_path", c.Paths.DBPath},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%s must not be empty", r.key)
		}
	}

	if err := ValidateSource(c.Build.Source); err != nil {
		return fmt.Errorf("build.source: %w", err)
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text (got %q)", c.Log.Format)
	}

	if c.Metrics.RetentionDays <= 0 {
		return fmt.Errorf("metrics.retention_days must be > 0 (got %d)", c.Metrics.RetentionDays)
	}
	return nil
}

// ValidateSource accepts the known build sources.
func ValidateSource(source string) error {
	switch source {
	case SourceContent, SourceStore:
		return nil
	}
	return fmt.Errorf("unknown source %q (want %s or %s)", source, SourceContent, SourceStore)
}
