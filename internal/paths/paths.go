// Package paths resolves where the traduit configuration file lives.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// ConfigFileName is the configuration file searched for in the resolved
// config directory.
const ConfigFileName = "traduit.yaml"

// EnvConfigDir overrides the configuration directory.
const EnvConfigDir = "TRADUIT_CONFIG_DIR"

// platformDir holds platform-detection functions that can be overridden in
// tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration
// directory.
//
// Linux:   $XDG_CONFIG_HOME/traduit (fallback ~/.config/traduit)
// macOS:   ~/Library/Application Support/traduit
// Windows: %APPDATA%/traduit
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "traduit"), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "traduit"), nil
	default:
		// macOS and Windows use os.UserConfigDir which returns
		// ~/Library/Application Support on macOS and %APPDATA% on Windows.
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "traduit"), nil
	}
}

// ResolveConfigFile returns the configuration file path following the
// precedence chain: explicit flag > $TRADUIT_CONFIG_DIR > a traduit.yaml in
// the working directory > the platform default directory.
func ResolveConfigFile(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		dir, err := filepath.Abs(env)
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, ConfigFileName), nil
	}
	if cwd, err := os.Getwd(); err == nil {
		local := filepath.Join(cwd, ConfigFileName)
		if _, err := os.Stat(local); err == nil {
			return local, nil
		}
	}
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}
