package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default values used when no config file or environment override exists.
const (
	DefaultAPIBaseURL = "http://127.0.0.1:8000"
	dirName           = ".threateye"
	fileName          = "config.yaml"
)

// Config holds client configuration
type Config struct {
	// APIBaseURL is the base URL of the ThreatEye API (no trailing slash)
	APIBaseURL string `yaml:"api_base_url"`

	// StateDir is where the client persists session state
	StateDir string `yaml:"state_dir"`

	// LogLevel controls logger verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		APIBaseURL: DefaultAPIBaseURL,
		StateDir:   defaultStateDir(),
		LogLevel:   "warn",
	}
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return dirName
	}
	return filepath.Join(home, dirName)
}

// Load reads configuration in precedence order: built-in defaults, then the
// config file under the state dir, then environment variables.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if dir := os.Getenv("THREATEYE_DIR"); dir != "" {
		cfg.StateDir = dir
	}

	path := filepath.Join(cfg.StateDir, fileName)
	if data, err := os.ReadFile(path); err == nil {
		// Expand environment variables in the config
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("unmarshal config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if apiURL := os.Getenv("THREATEYE_API_URL"); apiURL != "" {
		cfg.APIBaseURL = apiURL
	}
	if level := os.Getenv("THREATEYE_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks a configuration for usable values
func Validate(cfg *Config) error {
	if cfg.APIBaseURL == "" {
		return fmt.Errorf("api_base_url must not be empty")
	}

	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil {
		return fmt.Errorf("api_base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api_base_url must use http or https, got %q", cfg.APIBaseURL)
	}

	if cfg.StateDir == "" {
		return fmt.Errorf("state_dir must not be empty")
	}

	return nil
}

// Save writes the configuration to the state dir
func (c *Config) Save() error {
	if err := os.MkdirAll(c.StateDir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	path := filepath.Join(c.StateDir, fileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}
