package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// LoadSettings reads settings.toml, creating it with defaults on first
// run so a fresh install has a file to edit.
func LoadSettings() (*Config, error) {
	cfg := DefaultConfig()
	settingsPath := GetSettingsFilePath()

	if !FileExists(settingsPath) {
		if err := CreateDefaultSettings(); err != nil {
			return nil, fmt.Errorf("failed to create settings file: %w", err)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(settingsPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}

	return cfg, nil
}

// LoadSettingsFromPath loads settings from a specific file path.
// Returns nil if the file doesn't exist (not an error).
func LoadSettingsFromPath(path string) (*Config, error) {
	if !FileExists(path) {
		return nil, nil
	}

	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}

	return cfg, nil
}

func CreateDefaultSettings() error {
	configDir := GetConfigDir()
	if err := EnsureDir(configDir); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	settingsPath := GetSettingsFilePath()
	// 0600: the file names API-key env vars and local launch commands
	return os.WriteFile(settingsPath, []byte(GenerateConfigTemplate()), 0600)
}
