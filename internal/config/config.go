// Package config handles persistent configuration for the adg client.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
)

// Theme values stored in the config file.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// DefaultServerURL is the analysis backend used when none is configured.
const DefaultServerURL = "http://localhost:8000"

// Config represents the user configuration
type Config struct {
	// ServerURL is the base URL of the analysis backend.
	ServerURL string `json:"server_url"`
	// Theme is the persisted color theme: "light" or "dark".
	// Empty means no explicit preference has been stored yet.
	Theme string `json:"theme,omitempty"`
	// ChartDir is where downloaded chart images are stored.
	ChartDir string `json:"chart_dir,omitempty"`
	// CopyToClipboard copies the final answer to the clipboard in
	// one-shot mode.
	CopyToClipboard bool `json:"copy_to_clipboard"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	homeDir, _ := os.UserHomeDir()
	return Config{
		ServerURL:       DefaultServerURL,
		ChartDir:        filepath.Join(homeDir, ".adg", "charts"),
		CopyToClipboard: false,
	}
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".adg"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetChartDir returns the chart directory from config, creating it if necessary
func GetChartDir(cfg Config) (string, error) {
	dir := cfg.ChartDir
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, ".adg", "charts")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create chart directory: %w", err)
	}

	return dir, nil
}

// LoadConfig loads the configuration from disk
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if config doesn't exist
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// IsValidTheme reports whether name is a storable theme value.
func IsValidTheme(name string) bool {
	return name == ThemeLight || name == ThemeDark
}

// detectDarkBackground probes the terminal's ambient color scheme. Replaced
// in tests.
var detectDarkBackground = lipgloss.HasDarkBackground

// ResolveTheme returns the effective theme for cfg. Precedence: explicit
// stored preference, then the terminal background probe, then light.
func ResolveTheme(cfg Config) string {
	if IsValidTheme(cfg.Theme) {
		return cfg.Theme
	}
	if detectDarkBackground() {
		return ThemeDark
	}
	return ThemeLight
}
