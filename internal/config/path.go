// Package config provides configuration utilities for the application.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands ~ and environment variables in a file path.
// It handles both ~ for home directory and $VAR style environment variables.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	// First expand tilde if present
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	// Then expand environment variables
	return os.ExpandEnv(path)
}

// DataDir returns the directory where application data is kept,
// honoring XDG_DATA_HOME when set.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "landbook")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "landbook"
	}
	return filepath.Join(home, ".local", "share", "landbook")
}

// DefaultDatabasePath returns the default SQLite database location.
func DefaultDatabasePath() string {
	return filepath.Join(DataDir(), "landbook.db")
}

// DefaultTokenPath returns the default OAuth token location.
func DefaultTokenPath() string {
	return filepath.Join(DataDir(), "calendar-token.json")
}
