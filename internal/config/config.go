package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// TokenEnv overrides the configured API token when set.
const TokenEnv = "YEARGOALS_TOKEN"

// Config holds all yeargoals configuration.
type Config struct {
	API        APIConfig        `toml:"api"`
	General    GeneralConfig    `toml:"general"`
	Engine     EngineConfig     `toml:"engine"`
	Appearance AppearanceConfig `toml:"appearance"`
	Journal    JournalConfig    `toml:"journal"`
	Log        LogConfig        `toml:"log"`
	Daemon     DaemonConfig     `toml:"daemon"`
}

// APIConfig holds goal service settings.
type APIConfig struct {
	BaseURL    string `toml:"base_url"`
	Token      string `toml:"token,omitempty"`
	TimeoutSec int    `toml:"timeout_sec"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DefaultYear int    `toml:"default_year,omitempty"` // 0 means the current year
	Category    string `toml:"category,omitempty"`
}

// EngineConfig tunes the mutation engine.
type EngineConfig struct {
	EntityLocking     bool `toml:"entity_locking"`
	RefreshOnProgress bool `toml:"refresh_on_progress"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// JournalConfig controls the local mutation journal.
type JournalConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path,omitempty"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file,omitempty"`
}

// DaemonConfig holds background status service settings.
type DaemonConfig struct {
	Addr         string `toml:"addr"`
	IntervalSec  int    `toml:"interval_sec"`
	EventsBuffer int    `toml:"events_buffer"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:    "http://127.0.0.1:5001/api",
			TimeoutSec: 10,
		},
		Engine: EngineConfig{
			RefreshOnProgress: true,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Journal: JournalConfig{
			Enabled: true,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8797",
			IntervalSec:  60,
			EventsBuffer: 200,
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "yeargoals")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "yeargoals")
}

// DataDir returns the XDG-compliant data directory for the journal and
// daemon state.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "yeargoals")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "yeargoals")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFile(Path())
}

// LoadFile reads the config at path over the defaults.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveFile(Path(), cfg)
}

// SaveFile writes the config to path, creating its directory.
func SaveFile(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// GetToken returns the API token from env var or config, in that order.
func GetToken(cfg Config) string {
	if tok := os.Getenv(TokenEnv); tok != "" {
		return tok
	}
	return cfg.API.Token
}

// Timeout returns the per-request timeout.
func (c APIConfig) Timeout() time.Duration {
	if c.TimeoutSec <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutSec) * time.Second
}

// JournalPath returns the journal database path, defaulting under DataDir.
func (c JournalConfig) JournalPath() string {
	if c.Path != "" {
		return c.Path
	}
	return filepath.Join(DataDir(), "journal.db")
}

// Year resolves the configured default year against now.
func (c GeneralConfig) Year(now time.Time) int {
	if c.DefaultYear > 0 {
		return c.DefaultYear
	}
	return now.Year()
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}
