// Package config loads and saves the terminal's on-disk configuration:
// which shell to launch and how, the initial window geometry, and the
// active color palette: locate a config dir under the user's home,
// load-or-default, save. Serializes as TOML via BurntSushi/toml.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ShellConfig controls how the login shell is launched.
type ShellConfig struct {
	Path          string            `toml:"path"`
	SourceRC      bool              `toml:"source_rc"`
	AdditionalEnv map[string]string `toml:"additional_env"`
}

// WindowConfig is the initial window geometry in pixels.
type WindowConfig struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// FontConfig selects the glyph source and size used to derive cell metrics.
type FontConfig struct {
	Path string  `toml:"path"`
	Size float32 `toml:"size"`
}

// Config holds the terminal's full configuration.
type Config struct {
	Shell   ShellConfig  `toml:"shell"`
	Window  WindowConfig `toml:"window"`
	Font    FontConfig   `toml:"font"`
	Palette string       `toml:"palette"`
}

// DefaultConfig returns the configuration used when no file exists yet.
func DefaultConfig() *Config {
	return &Config{
		Shell: ShellConfig{
			SourceRC:      true,
			AdditionalEnv: make(map[string]string),
		},
		Window: WindowConfig{
			Width:  900,
			Height: 600,
		},
		Font: FontConfig{
			Size: 15.0,
		},
		Palette: "default",
	}
}

// GetConfigPath returns the path to the config file, creating its parent
// directory if necessary.
func GetConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".corvid.toml"
	}
	configDir := filepath.Join(homeDir, ".config", "corvid")
	os.MkdirAll(configDir, 0755)
	return filepath.Join(configDir, "config.toml")
}

// Load reads the config file, returning DefaultConfig if it does not yet
// exist.
func Load() (*Config, error) {
	path := GetConfigPath()
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	if cfg.Shell.AdditionalEnv == nil {
		cfg.Shell.AdditionalEnv = make(map[string]string)
	}
	return cfg, nil
}

// Save writes c to the config file as TOML.
func (c *Config) Save() error {
	path := GetConfigPath()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}

// GetAvailableShells returns the login shells present on the system.
func GetAvailableShells() []string {
	possible := []string{
		"/bin/bash", "/usr/bin/bash",
		"/bin/zsh", "/usr/bin/zsh",
		"/bin/fish", "/usr/bin/fish",
		"/bin/sh", "/usr/bin/sh",
		"/bin/dash", "/usr/bin/dash",
	}

	var shells []string
	seen := make(map[string]bool)
	for _, shell := range possible {
		if _, err := os.Stat(shell); err != nil {
			continue
		}
		base := filepath.Base(shell)
		if seen[base] {
			continue
		}
		seen[base] = true
		shells = append(shells, shell)
	}
	return shells
}
