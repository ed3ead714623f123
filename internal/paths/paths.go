// Package paths provides sudo-aware path resolution for videolabels.
//
// When running with sudo, these functions resolve paths against the
// original user's directories (via SUDO_USER) instead of root's.
package paths

import (
	"os"
	"os/user"
	"path/filepath"
)

// UserHomeDir returns the home directory of the actual user.
// If running with sudo, returns the SUDO_USER's home directory, not root's.
func UserHomeDir() (string, error) {
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" && sudoUser != "root" {
		u, err := user.Lookup(sudoUser)
		if err == nil {
			return u.HomeDir, nil
		}
		// Fall through if lookup fails
	}
	return os.UserHomeDir()
}

// UserConfigDir returns the config directory of the actual user.
// On Linux this is typically ~/.config
func UserConfigDir() (string, error) {
	homeDir, err := UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config"), nil
}

// VideoLabelsDir returns the videolabels config directory,
// ~/.config/videolabels for the actual user.
func VideoLabelsDir() (string, error) {
	configDir, err := UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "videolabels"), nil
}

// ConfigPath returns the path to the config file,
// ~/.config/videolabels/config.toml for the actual user.
func ConfigPath() (string, error) {
	dir, err := VideoLabelsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// CachePath returns the path to the metadata cache database,
// ~/.config/videolabels/cache.db for the actual user.
func CachePath() (string, error) {
	dir, err := VideoLabelsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cache.db"), nil
}

// OperationsLogPath returns the path to the append-only operation log,
// ~/.config/videolabels/operations.jsonl for the actual user.
func OperationsLogPath() (string, error) {
	dir, err := VideoLabelsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "operations.jsonl"), nil
}

// ActualUser returns the actual username (not root when using sudo).
func ActualUser() string {
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" && sudoUser != "root" {
		return sudoUser
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return "unknown"
}
