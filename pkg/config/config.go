// Package config provides the explicit configuration object consumed by the
// browser engine and the tool surface. Values come from an optional YAML file
// overlaid with HATTRICK_* environment variables; fields are validated only
// by presence, never schema-checked beyond that.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Defaults for fields the caller leaves unset.
const (
	DefaultBaseURL      = "https://www.hattrick.org"
	DefaultNavTimeoutMs = 30000
)

// Config carries everything the engine and tools need. It is passed in at
// construction; nothing reads the environment after Load returns.
type Config struct {
	// Username and Password are the site credentials. When either is absent
	// the engine proceeds unauthenticated.
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// BaseURL is the canonical (unauthenticated) site root. The
	// authenticated host is discovered at login time, not configured.
	BaseURL string `yaml:"base_url"`

	// DataDir holds the session record and log files.
	DataDir string `yaml:"data_dir"`

	// TeamID and LeagueID feed the shortcut readers.
	TeamID   string `yaml:"team_id"`
	LeagueID string `yaml:"league_id"`

	// NavTimeoutMs bounds full-page target navigation.
	NavTimeoutMs int `yaml:"nav_timeout_ms"`

	// AllowedHosts are glob patterns absolute navigation targets must match.
	AllowedHosts []string `yaml:"allowed_hosts"`

	// Headful disables headless mode for local debugging.
	Headful bool `yaml:"headful"`
}

// HasCredentials reports whether a credential login can be attempted.
func (c *Config) HasCredentials() bool {
	return c.Username != "" && c.Password != ""
}

// Load reads the configuration from the default file location (overridable
// via HATTRICK_CONFIG) and the process environment.
func Load() (*Config, error) {
	path := os.Getenv("HATTRICK_CONFIG")
	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, ".hattrick-mcp", "config.yaml")
		}
	}
	return LoadFrom(path, os.Getenv)
}

// LoadFrom loads the file at path (absence is fine), overlays environment
// values from env, and applies defaults. Split out for tests.
func LoadFrom(path string, env func(string) string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	overlayEnv(cfg, env)
	applyDefaults(cfg)
	return cfg, nil
}

func overlayEnv(cfg *Config, env func(string) string) {
	if v := env("HATTRICK_USERNAME"); v != "" {
		cfg.Username = v
	}
	if v := env("HATTRICK_PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v := env("HATTRICK_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := env("HATTRICK_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := env("HATTRICK_TEAM_ID"); v != "" {
		cfg.TeamID = v
	}
	if v := env("HATTRICK_LEAGUE_ID"); v != "" {
		cfg.LeagueID = v
	}
	if v := env("HATTRICK_NAV_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			cfg.NavTimeoutMs = ms
		}
	}
	if v := env("HATTRICK_HEADFUL"); v == "1" || v == "true" {
		cfg.Headful = true
	}
}

func applyDefaults(cfg *Config) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.DataDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.DataDir = filepath.Join(home, ".hattrick-mcp")
		} else {
			cfg.DataDir = ".hattrick-mcp"
		}
	}
	if cfg.NavTimeoutMs <= 0 {
		cfg.NavTimeoutMs = DefaultNavTimeoutMs
	}
	if len(cfg.AllowedHosts) == 0 {
		cfg.AllowedHosts = []string{"hattrick.org", "*.hattrick.org"}
	}
}
