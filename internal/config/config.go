// Package config loads polardash settings from polardash.yml and the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/h0rv/polardash/internal/domain"
)

const (
	ConfigFileName = "polardash.yml"
	AppName        = "polardash"

	DefaultAPIURL = "https://api.polar.sh"
)

// Config is the merged result of the config file and environment overrides.
type Config struct {
	APIURL   string          `yaml:"api_url"`
	Token    string          `yaml:"token,omitempty"`
	NATSURL  string          `yaml:"nats_url,omitempty"` // empty = no live updates
	Platform domain.Platform `yaml:"platform"`
	PageSize int             `yaml:"page_size,omitempty"`
	Retry    RetryConfig     `yaml:"retry"`

	// Path is the file the config was read from, empty when none was found.
	Path string `yaml:"-"`
}

// RetryConfig bounds retries of failed reads.
type RetryConfig struct {
	Attempts int           `yaml:"attempts"`
	Backoff  time.Duration `yaml:"backoff"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		APIURL:   DefaultAPIURL,
		Platform: domain.PlatformGitHub,
		Retry: RetryConfig{
			Attempts: 3,
			Backoff:  500 * time.Millisecond,
		},
	}
}

// Load reads the config file at path, or the first polardash.yml found walking up
// from the working directory and then in the user config dir when path is empty.
// A missing file is not an error. Environment variables override file values.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file at %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		cfg.Path = path
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.APIURL = envOrDefault("POLAR_API_URL", c.APIURL)
	c.Token = envOrDefault("POLAR_TOKEN", c.Token)
	c.NATSURL = envOrDefault("POLAR_NATS_URL", c.NATSURL)
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return errors.New("api_url is required")
	}
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api_url %q: must be an absolute URL", c.APIURL)
	}
	if c.Platform != domain.PlatformGitHub {
		return fmt.Errorf("unsupported platform %q", c.Platform)
	}
	if c.Retry.Attempts < 1 {
		return fmt.Errorf("retry.attempts must be at least 1, got %d", c.Retry.Attempts)
	}
	if c.Retry.Backoff < 0 {
		return fmt.Errorf("retry.backoff must not be negative")
	}
	if c.PageSize < 0 {
		return fmt.Errorf("page_size must not be negative")
	}
	return nil
}

// Save writes the configuration to path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// UserDir returns the per-user polardash config directory.
func UserDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName), nil
}

// findConfigFile searches the current and parent directories, then the user
// config dir.
func findConfigFile() string {
	if dir, err := os.Getwd(); err == nil {
		for {
			configPath := filepath.Join(dir, ConfigFileName)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}

			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	if dir, err := UserDir(); err == nil {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
	}
	return ""
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
