// Package config provides configuration loading and structs for the snfront server.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gosimple/slug"
	"github.com/hyperjump/snfront/internal/sites"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure returned from Load and Validate.
var ErrInvalid = errors.New("invalid config")

// Environment variables that override the file.
const (
	EnvAPIBaseURL = "SNFRONT_API_BASE_URL"
	EnvHost       = "SNFRONT_HOST"
	EnvPort       = "SNFRONT_PORT"
	EnvRedisAddr  = "SNFRONT_REDIS_ADDR"
	EnvDebug      = "SNFRONT_DEBUG"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Server  ServerConfig  `yaml:"server"`
	API     APIConfig     `yaml:"api"`
	Search  SearchConfig  `yaml:"search"`
	Cache   CacheConfig   `yaml:"cache"`
	Storage StorageConfig `yaml:"storage"`
	Sites   []sites.Site  `yaml:"sites" validate:"dive"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string        `yaml:"host" validate:"required"`
	Port           int           `yaml:"port" validate:"min=1,max=65535"`
	RequestTimeout time.Duration `yaml:"request_timeout" validate:"min=0"`
}

// APIConfig describes the upstream SN search API.
type APIConfig struct {
	BaseURL   string        `yaml:"base_url" validate:"required,url"`
	Timeout   time.Duration `yaml:"timeout" validate:"min=0"`
	UserAgent string        `yaml:"user_agent"`
}

// SearchConfig holds autocomplete throttling and response cache lifetimes.
// AutocompleteRate is requests per second; zero disables throttling.
type SearchConfig struct {
	AutocompleteRate  float64       `yaml:"autocomplete_rate" validate:"min=0"`
	AutocompleteBurst int           `yaml:"autocomplete_burst" validate:"min=0"`
	SuggestCacheTTL   time.Duration `yaml:"suggest_cache_ttl" validate:"min=0"`
	ChatCacheTTL      time.Duration `yaml:"chat_cache_ttl" validate:"min=0"`
}

// CacheConfig selects the response cache backend.
type CacheConfig struct {
	Backend       string `yaml:"backend" validate:"oneof=none memory redis"`
	Capacity      int    `yaml:"capacity" validate:"min=0"`
	RedisAddr     string `yaml:"redis_addr" validate:"required_if=Backend redis"`
	RedisDB       int    `yaml:"redis_db" validate:"min=0"`
	RedisPassword string `yaml:"redis_password"`
}

// StorageConfig holds the query log location. An empty path disables the log.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slug.IsSlug(fl.Field().String())
	})
	return v
}

// Load reads and parses the config file at path, applies defaults and environment overrides,
// expands paths and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	configDir := filepath.Dir(path)
	if err := loadDotEnv(filepath.Join(configDir, ".env")); err != nil {
		return nil, err
	}
	if err := ApplyEnv(&cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)

	if cfg.Storage.DatabasePath != "" {
		cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks cfg against its struct tags. Site names must be unique slugs.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	seen := make(map[string]bool, len(cfg.Sites))
	for _, s := range cfg.Sites {
		if seen[s.Name] {
			return fmt.Errorf("%w: duplicate site %q", ErrInvalid, s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}

// ApplyEnv overrides cfg with the SNFRONT_* environment variables that are set.
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv(EnvAPIBaseURL); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv(EnvHost); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, EnvPort, v, err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv(EnvDebug); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, EnvDebug, v, err)
		}
		cfg.Debug = debug
	}
	return nil
}

// loadDotEnv loads path into the environment when it exists. Variables already set win.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
