// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for
// tickerchat.
//
// Configuration is TOML with sensible defaults, environment variable
// overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.tickerchat/config.toml
//   - Built-in defaults
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete tickerchat configuration.
type Config struct {
	// Version of the config schema
	Version string `toml:"version"`

	// Gateway configuration (backend API)
	Gateway GatewayConfig `toml:"gateway"`

	// Chat behavior configuration
	Chat ChatConfig `toml:"chat"`

	// UI configuration
	UI UIConfig `toml:"ui"`

	// Log configuration
	Log LogConfig `toml:"log"`
}

// GatewayConfig contains backend gateway configuration.
type GatewayConfig struct {
	// BaseURL is the root URL of the chat gateway
	BaseURL string `toml:"base_url"`
	// TimeoutSecs is the timeout for non-streaming requests in seconds
	TimeoutSecs int `toml:"timeout_secs"`
	// StreamTimeoutSecs is the per-stream inactivity timeout in seconds.
	// 0 disables the timeout.
	StreamTimeoutSecs int `toml:"stream_timeout_secs"`
	// MaxRetries is the retry count for idempotent requests
	MaxRetries int `toml:"max_retries"`
	// RequestsPerSecond rate-limits outgoing requests (0 = unlimited)
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// ChatConfig contains chat session behavior configuration.
type ChatConfig struct {
	// DefaultTicker is the symbol opened by the quick-open shortcut
	DefaultTicker string `toml:"default_ticker"`
	// TypingIntervalMs is the typewriter reveal interval per character
	TypingIntervalMs int `toml:"typing_interval_ms"`
	// HistoryLimit caps the number of messages kept per session (0 = unlimited)
	HistoryLimit int `toml:"history_limit"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme"`
	// ShowTimings displays response timing under assistant messages
	ShowTimings bool `toml:"show_timings"`
	// CompactMode uses a more compact UI layout
	CompactMode bool `toml:"compact_mode"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	// Debug lowers the log level to debug
	Debug bool `toml:"debug"`
	// Dir overrides the log directory (empty = ~/.tickerchat/logs)
	Dir string `toml:"dir"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Gateway: GatewayConfig{
			BaseURL:           "http://127.0.0.1:8000",
			TimeoutSecs:       30,
			StreamTimeoutSecs: 120,
			MaxRetries:        2,
			RequestsPerSecond: 4,
		},

		Chat: ChatConfig{
			DefaultTicker:    "AAPL",
			TypingIntervalMs: 30,
			HistoryLimit:     0,
		},

		UI: UIConfig{
			Theme:       "dark",
			ShowTimings: true,
			CompactMode: false,
		},

		Log: LogConfig{
			Debug: false,
			Dir:   "",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// Dir returns the tickerchat configuration directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".tickerchat"), nil
}

// Path returns the path to the TOML config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureDir ensures the config directory exists.
func EnsureDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the default config file, falling back to
// built-in defaults when no file exists. Environment overrides are applied
// last, followed by validation.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); statErr != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific TOML file with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// ENV OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies TICKERCHAT_* environment variables on top of
// the loaded values.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("TICKERCHAT_GATEWAY_URL"); v != "" {
		c.Gateway.BaseURL = v
	}
	if v := os.Getenv("TICKERCHAT_DEFAULT_TICKER"); v != "" {
		c.Chat.DefaultTicker = v
	}
	if v := os.Getenv("TICKERCHAT_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Log.Debug = b
		}
	}
	if v := os.Getenv("TICKERCHAT_THEME"); v != "" {
		c.UI.Theme = v
	}
}

// =============================================================================
// DEFAULTS AND VALIDATION
// =============================================================================

// SetDefaults fills in zero values that have no meaningful empty state.
func (c *Config) SetDefaults() {
	d := Default()
	if c.Version == "" {
		c.Version = d.Version
	}
	if c.Gateway.BaseURL == "" {
		c.Gateway.BaseURL = d.Gateway.BaseURL
	}
	if c.Gateway.TimeoutSecs <= 0 {
		c.Gateway.TimeoutSecs = d.Gateway.TimeoutSecs
	}
	if c.Chat.DefaultTicker == "" {
		c.Chat.DefaultTicker = d.Chat.DefaultTicker
	}
	if c.Chat.TypingIntervalMs <= 0 {
		c.Chat.TypingIntervalMs = d.Chat.TypingIntervalMs
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Gateway.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("gateway.base_url %q is not a valid URL", c.Gateway.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("gateway.base_url scheme must be http or https, got %q", u.Scheme)
	}
	if c.Gateway.MaxRetries < 0 {
		return fmt.Errorf("gateway.max_retries must be >= 0, got %d", c.Gateway.MaxRetries)
	}
	if c.Gateway.RequestsPerSecond < 0 {
		return fmt.Errorf("gateway.requests_per_second must be >= 0, got %g", c.Gateway.RequestsPerSecond)
	}
	if c.Chat.TypingIntervalMs < 1 || c.Chat.TypingIntervalMs > 1000 {
		return fmt.Errorf("chat.typing_interval_ms must be 1-1000, got %d", c.Chat.TypingIntervalMs)
	}
	if c.Chat.HistoryLimit < 0 {
		return fmt.Errorf("chat.history_limit must be >= 0, got %d", c.Chat.HistoryLimit)
	}
	switch c.UI.Theme {
	case "dark", "light", "auto":
	default:
		return fmt.Errorf("ui.theme must be dark, light, or auto, got %q", c.UI.Theme)
	}
	return nil
}

// =============================================================================
// SAVE
// =============================================================================

// Save writes the configuration to the default config file.
func (c *Config) Save() error {
	if err := EnsureDir(); err != nil {
		return err
	}
	path, err := Path()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// =============================================================================
// GLOBAL ACCESS
// =============================================================================

var (
	globalMu  sync.RWMutex
	globalCfg *Config
)

// Global returns the process-wide configuration, loading it on first use.
func Global() *Config {
	globalMu.RLock()
	if globalCfg != nil {
		defer globalMu.RUnlock()
		return globalCfg
	}
	globalMu.RUnlock()

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalCfg == nil {
		cfg, err := Load()
		if err != nil {
			cfg = Default()
		}
		globalCfg = cfg
	}
	return globalCfg
}

// SetGlobal replaces the process-wide configuration.
func SetGlobal(cfg *Config) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalCfg = cfg
}
