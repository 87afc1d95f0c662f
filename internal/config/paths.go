// Package config manages user preferences stored as JSON5/JSON files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const appName = "imgpreview"

// Dir returns the imgpreview config directory.
// Respects XDG_CONFIG_HOME; defaults to $HOME/.config/imgpreview.
func Dir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	return filepath.Join(home, ".config", appName), nil
}

// CacheDir returns the directory holding fetched remote images.
// Respects XDG_CACHE_HOME; defaults to $HOME/.cache/imgpreview/images.
func CacheDir() (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}

		base = filepath.Join(home, ".cache")
	}

	return filepath.Join(base, appName, "images"), nil
}

// Path returns the full path to the config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, "config.json"), nil
}
