package dirs

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "videomorph"

// AppName returns the canonical application name for directory paths.
func AppName() string {
	return appName
}

// ConfigDir returns the app's configuration directory.
// - Linux: $XDG_CONFIG_HOME/videomorph or ~/.config/videomorph
// - macOS: ~/Library/Application Support/videomorph
// - Windows: %AppData%/videomorph (fallback to os.UserConfigDir)
func ConfigDir() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support", AppName()), nil
	case "linux":
		xdg := os.Getenv("XDG_CONFIG_HOME")
		if xdg != "" {
			return filepath.Join(xdg, AppName()), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", AppName()), nil
	default:
		// Windows and other OSes fall back to UserConfigDir
		cfg, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(cfg, AppName()), nil
	}
}

// ProfilesPath returns the user profile catalog location. The file is
// optional; the built-in catalog is used when it is missing.
func ProfilesPath() (string, error) {
	c, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(c, "profiles.yaml"), nil
}

// Ensure creates the directory if it doesn't exist.
func Ensure(path string) error {
	if path == "" {
		return errors.New("empty path")
	}
	return os.MkdirAll(path, 0o755)
}

// EnsureConfigDir creates the config directory so users have a place for
// config.yaml and profiles.yaml.
func EnsureConfigDir() error {
	p, err := ConfigDir()
	if err != nil {
		return err
	}
	return Ensure(p)
}
