package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	RESAS    RESASConfig    `yaml:"resas"`
	Holidays HolidaysConfig `yaml:"holidays"`
	Shell    ShellConfig    `yaml:"shell"`
	Server   ServerConfig   `yaml:"server"`
}

// DatabaseConfig configures SQLite storage.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// RESASConfig configures the tourism guest-count API.
type RESASConfig struct {
	APIKey      string `yaml:"api_key"`
	BaseURL     string `yaml:"base_url"`
	Concurrency int    `yaml:"concurrency"`
	Timeout     string `yaml:"timeout"`
}

// ParseTimeout returns the request timeout as time.Duration.
func (r RESASConfig) ParseTimeout() time.Duration {
	d, err := time.ParseDuration(r.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// HolidaysConfig configures the public holidays API.
type HolidaysConfig struct {
	BaseURL string `yaml:"base_url"`
	Country string `yaml:"country"`
	Timeout string `yaml:"timeout"`
}

// ParseTimeout returns the request timeout as time.Duration.
func (h HolidaysConfig) ParseTimeout() time.Duration {
	d, err := time.ParseDuration(h.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// ShellConfig configures the ad-hoc query guard.
type ShellConfig struct {
	ExtraDeniedWords []string `yaml:"extra_denied_words"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "./stayradar.db"},
		RESAS: RESASConfig{
			BaseURL:     "https://opendata.resas-portal.go.jp/api/v1/tourism/hotelAnalysis/groupStack",
			Concurrency: 1,
			Timeout:     "30s",
		},
		Holidays: HolidaysConfig{
			BaseURL: "https://date.nager.at/api/v2/PublicHolidays",
			Country: "JP",
			Timeout: "30s",
		},
		Server: ServerConfig{Port: 8080},
	}
}

// Load reads configuration from a YAML file and applies env var overrides.
// Variables from envFile, when it exists, are set before the overrides run.
func Load(path, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read env file %s: %w", envFile, err)
		}
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// Validate checks the settings a load run needs.
func (c *Config) Validate() error {
	if c.RESAS.APIKey == "" {
		return errors.New("resas api key is not set (resas.api_key or RESAS_API_KEY)")
	}
	if c.Database.Path == "" {
		return errors.New("database path is empty")
	}
	return nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("STAYRADAR_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("RESAS_API_KEY"); v != "" {
		cfg.RESAS.APIKey = v
	}
}
