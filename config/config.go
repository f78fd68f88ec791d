// ABOUTME: Application configuration loading and persistence
// ABOUTME: JSON config at an XDG path with .env and environment overrides
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

const (
	// AppName is the directory name under the XDG data home.
	AppName = "rally"

	// ConfigFileName is where local config is stored.
	ConfigFileName = "rally-config.json"

	// DefaultAPIURL is the hosted backend.
	DefaultAPIURL = "https://api.rallyhq.dev/v1"

	// DefaultCharmHost serves the optional cloud-synced snapshot backend.
	DefaultCharmHost = "charm.2389.dev"
)

// Store backends for the snapshot store.
const (
	BackendBadger = "badger"
	BackendCharm  = "charm"
	BackendMemory = "memory"
)

// Config holds client settings.
type Config struct {
	// APIURL is the backend base URL.
	APIURL string `json:"api_url,omitempty"`

	// StoreBackend selects the snapshot store: badger (default), charm,
	// or memory.
	StoreBackend string `json:"store_backend,omitempty"`

	// CharmHost is the charm server for the charm backend.
	CharmHost string `json:"charm_host,omitempty"`

	// CharmAutoSync pushes snapshot writes to the charm server.
	CharmAutoSync bool `json:"charm_auto_sync"`

	// RefreshInterval is the silent-refresh cadence.
	RefreshInterval time.Duration `json:"refresh_interval,omitempty"`

	// SidebarCap bounds the persistent sidebar's conversation slice.
	SidebarCap int `json:"sidebar_cap,omitempty"`

	// DeviceID identifies this installation; generated on first load.
	DeviceID string `json:"device_id,omitempty"`
}

// DefaultConfig returns a new config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		APIURL:          DefaultAPIURL,
		StoreBackend:    BackendBadger,
		CharmHost:       DefaultCharmHost,
		CharmAutoSync:   true,
		RefreshInterval: 5 * time.Minute,
		SidebarCap:      20,
	}
}

// DataDir returns the application data directory, creating it if needed.
func DataDir() (string, error) {
	dir := filepath.Join(xdg.DataHome, AppName)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}

func configPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// LoadConfig loads config from disk, applying defaults and environment
// overrides. A missing or invalid file yields defaults. A generated
// device id is persisted back.
func LoadConfig() (*Config, error) {
	// Best effort: a local .env may carry RALLY_* overrides.
	_ = godotenv.Load()

	cfg := readFile()
	applyDefaults(cfg)

	if v := os.Getenv("RALLY_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("RALLY_STORE_BACKEND"); v != "" {
		cfg.StoreBackend = v
	}

	if cfg.DeviceID == "" {
		cfg.DeviceID = uuid.New().String()
		_ = cfg.Save()
	}

	return cfg, nil
}

func readFile() *Config {
	path, err := configPath()
	if err != nil {
		// Can't determine config path, use defaults
		return DefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultConfig()
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		// Invalid config, use defaults
		return DefaultConfig()
	}
	return &cfg
}

func applyDefaults(cfg *Config) {
	defaults := DefaultConfig()
	if cfg.APIURL == "" {
		cfg.APIURL = defaults.APIURL
	}
	if cfg.StoreBackend == "" {
		cfg.StoreBackend = defaults.StoreBackend
	}
	if cfg.CharmHost == "" {
		cfg.CharmHost = defaults.CharmHost
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = defaults.RefreshInterval
	}
	if cfg.SidebarCap <= 0 {
		cfg.SidebarCap = defaults.SidebarCap
	}
}

// Save persists the config to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}
