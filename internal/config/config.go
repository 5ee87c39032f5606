package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/l3aro/autofree/pkg/gate"
	"github.com/l3aro/autofree/pkg/points"
)

// Config holds all configuration for autofree
type Config struct {
	// AllocIndicator is the substring marking an allocation call on a line
	AllocIndicator string `yaml:"alloc_indicator" env:"AUTOFREE_ALLOC_INDICATOR"`

	// ReleaseFunc is the function called by inserted release statements
	ReleaseFunc string `yaml:"release_func" env:"AUTOFREE_RELEASE_FUNC"`

	// Indent prefixes every inserted release statement
	Indent string `yaml:"indent" env:"AUTOFREE_INDENT"`

	// PointsFile is the default interchange artifact path; its extension
	// selects the encoding (.json, .yaml, .msgpack)
	PointsFile string `yaml:"points_file" env:"AUTOFREE_POINTS_FILE"`

	// Result cache
	CacheDir  string `yaml:"cache_dir" env:"AUTOFREE_CACHE_DIR"`
	CacheSize int    `yaml:"cache_size" env:"AUTOFREE_CACHE_SIZE"`

	// Logging
	Verbose bool `yaml:"verbose" env:"AUTOFREE_VERBOSE"`
	LogJSON bool `yaml:"log_json" env:"AUTOFREE_LOG_JSON"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		AllocIndicator: gate.DefaultIndicator,
		ReleaseFunc:    "free",
		Indent:         "\t",
		PointsFile:     "references.json",
		CacheDir:       ".autofree/cache",
		CacheSize:      256,
		Verbose:        false,
		LogJSON:        false,
	}
}

// CacheFile returns the path of the persisted result cache.
func (c *Config) CacheFile() string {
	return filepath.Join(c.CacheDir, "results.msgpack")
}

// GlobalConfigFilePath returns the global config file path (~/.autofree/config.yaml)
func GlobalConfigFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".autofree/config.yaml"
	}
	return filepath.Join(home, ".autofree", "config.yaml")
}

// ProjectConfigFilePath returns the project-level config file path (./.autofree/config.yaml)
func ProjectConfigFilePath() string {
	return filepath.Join(".autofree", "config.yaml")
}

// Load reads configuration with the following priority (highest to lowest):
// 1. Project-level config (./.autofree/config.yaml)
// 2. Environment variables
// 3. Global config (~/.autofree/config.yaml)
// 4. Defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if err := mergeFile(cfg, GlobalConfigFilePath(), false); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := mergeFile(cfg, ProjectConfigFilePath(), false); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile reads configuration from a specific YAML file path
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	applyEnvOverrides(cfg)

	if err := mergeFile(cfg, path, true); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func mergeFile(cfg *Config, path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Save writes the configuration to the specified YAML file path.
// It creates parent directories if they don't exist.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("AUTOFREE_ALLOC_INDICATOR"); v != "" {
		cfg.AllocIndicator = v
	}
	if v := os.Getenv("AUTOFREE_RELEASE_FUNC"); v != "" {
		cfg.ReleaseFunc = v
	}
	if v := os.Getenv("AUTOFREE_INDENT"); v != "" {
		cfg.Indent = v
	}
	if v := os.Getenv("AUTOFREE_POINTS_FILE"); v != "" {
		cfg.PointsFile = v
	}
	if v := os.Getenv("AUTOFREE_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv("AUTOFREE_CACHE_SIZE"); v != "" {
		if i, ok := parseInt(v); ok && i >= 0 {
			cfg.CacheSize = i
		}
	}
	if v := os.Getenv("AUTOFREE_VERBOSE"); v != "" {
		cfg.Verbose = parseBool(v)
	}
	if v := os.Getenv("AUTOFREE_LOG_JSON"); v != "" {
		cfg.LogJSON = parseBool(v)
	}
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks that the configuration has valid required fields
func (c *Config) Validate() error {
	if c.AllocIndicator == "" {
		return fmt.Errorf("alloc_indicator must not be empty")
	}
	if !identPattern.MatchString(c.ReleaseFunc) {
		return fmt.Errorf("release_func %q is not a C identifier", c.ReleaseFunc)
	}
	if strings.ContainsAny(c.Indent, "\r\n") {
		return fmt.Errorf("indent must not contain line breaks")
	}
	if _, err := points.FormatFor(c.PointsFile); err != nil {
		return fmt.Errorf("points_file: %w", err)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache_size must be non-negative")
	}
	return nil
}

// parseInt attempts to parse a string as int
func parseInt(s string) (int, bool) {
	var i int
	if _, err := fmt.Sscanf(s, "%d", &i); err != nil {
		return 0, false
	}
	return i, true
}

func parseBool(s string) bool {
	return s == "true" || s == "1" || s == "yes"
}
