// Package config loads the sync core configuration.
//
// Precedence, lowest to highest: built-in defaults, the YAML config file,
// environment variables (a local .env file is honored when present).
package config

import (
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultResources are the record collections the mobile client syncs.
var DefaultResources = []string{"properties", "tenants", "contracts", "payments", "feedback"}

// Config holds the sync core configuration.
type Config struct {
	RemoteBaseURL string        `yaml:"remote_base_url"`
	APIToken      string        `yaml:"api_token"`
	DataDir       string        `yaml:"data_dir"`
	Resources     []string      `yaml:"resources"`
	SyncInterval  time.Duration `yaml:"sync_interval"`
	ServerPort    string        `yaml:"server_port"`
}

// Load reads configuration from an optional YAML file and the environment.
// path may be empty to use environment and defaults only.
func Load(path string) (*Config, error) {
	// A .env alongside the binary is a development convenience; its absence
	// is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		DataDir:      "./data",
		Resources:    DefaultResources,
		SyncInterval: 15 * time.Minute,
		ServerPort:   "8090",
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, err
		}
	}

	if v := os.Getenv("RENTNEST_REMOTE_URL"); v != "" {
		cfg.RemoteBaseURL = v
	}
	if v := os.Getenv("RENTNEST_API_TOKEN"); v != "" {
		cfg.APIToken = v
	}
	if v := os.Getenv("RENTNEST_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("RENTNEST_SERVER_PORT"); v != "" {
		cfg.ServerPort = v
	}
	if v := os.Getenv("RENTNEST_SYNC_INTERVAL"); v != "" {
		interval, err := time.ParseDuration(v)
		if err != nil {
			return nil, errors.New("invalid RENTNEST_SYNC_INTERVAL format")
		}
		cfg.SyncInterval = interval
	}

	// Validate required fields
	if cfg.RemoteBaseURL == "" {
		return nil, errors.New("remote_base_url is required (RENTNEST_REMOTE_URL)")
	}
	if len(cfg.Resources) == 0 {
		return nil, errors.New("at least one resource is required")
	}

	return cfg, nil
}
