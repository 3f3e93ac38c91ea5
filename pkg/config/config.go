package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const DefaultRegistryURL = "https://raw.githubusercontent.com/Jamie-Poeffel/tmpl/refs/heads/registry"

type Config struct {
	DataDir     string        `yaml:"data_dir"`
	RegistryURL string        `yaml:"registry_url"`
	Spinner     *bool         `yaml:"spinner,omitempty"`
	LogLevel    string        `yaml:"log_level"`
	History     HistoryConfig `yaml:"history"`
}

type HistoryConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Path    string `yaml:"path"`
}

// SpinnerEnabled defaults to true when unset.
func (c *Config) SpinnerEnabled() bool {
	return c.Spinner == nil || *c.Spinner
}

// HistoryEnabled defaults to true when unset.
func (c *Config) HistoryEnabled() bool {
	return c.History.Enabled == nil || *c.History.Enabled
}

// TemplatesDir is where installed templates live.
func (c *Config) TemplatesDir() string {
	return filepath.Join(c.DataDir, "templates")
}

// Level parses LogLevel, falling back to info.
func (c *Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

func DefaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".tmpl"
	}
	return filepath.Join(dir, "tmpl")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// DefaultDataDir honours TMPL_DATA_DIR, then XDG_DATA_HOME, then the
// platform's conventional data location.
func DefaultDataDir() string {
	if dir := os.Getenv("TMPL_DATA_DIR"); dir != "" {
		return dir
	}
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "tmpl")
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".tmpl"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir, "Library", "Application Support", "tmpl")
	case "windows":
		if dir := os.Getenv("APPDATA"); dir != "" {
			return filepath.Join(dir, "tmpl")
		}
	}
	return filepath.Join(homeDir, ".local", "share", "tmpl")
}

func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigPath()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if dir := os.Getenv("TMPL_DATA_DIR"); dir != "" {
		c.DataDir = dir
	}
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir()
	}
	if c.RegistryURL == "" {
		c.RegistryURL = DefaultRegistryURL
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.History.Path == "" {
		c.History.Path = filepath.Join(c.DataDir, "history.db")
	}
}

func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func WriteDefaultConfig(configPath string) error {
	if configPath == "" {
		configPath = DefaultConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(configPath); err == nil {
		return nil
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}
