// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"
)

const appName = "ditado"

// Environment overrides for the default data locations.
const (
	EnvDBPath        = "DITADO_DB"
	EnvExercisesPath = "DITADO_EXERCISES"
)

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// DefaultExercisesPath returns the exercise file used when none is configured.
func DefaultExercisesPath() string {
	if v := os.Getenv(EnvExercisesPath); v != "" {
		return v
	}
	return filepath.Join(XDGConfigHome(), appName, "exercises.toml")
}

// DefaultDBPath returns the default path for the SQLite database.
func DefaultDBPath() string {
	if v := os.Getenv(EnvDBPath); v != "" {
		return v
	}
	return filepath.Join(XDGDataHome(), appName, appName+".db")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appName, "config.toml")
}
