package clippyconfig

import (
	"os"
	"path/filepath"
	"runtime"
)

// appName is the directory name used under the OS config directory and
// under the user's home directory.
const appName = "clippy"

// storageConfigFileName is the storage backend configuration file within
// the data directory (spec.md §6).
const storageConfigFileName = "storage_config.json"

// DataDir resolves the data directory using the three-tier fallback order
// from spec.md §6: OS config directory + "clippy"; else home + ".clippy";
// else "./clippy_data".
func DataDir() string {
	if dir := osConfigDir(); dir != "" {
		return filepath.Join(dir, appName)
	}

	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, "."+appName)
	}

	return "clippy_data"
}

// osConfigDir returns the platform's config directory, or "" if it cannot
// be determined. Linux respects XDG_CONFIG_HOME; macOS uses Application
// Support; other platforms fall back to os.UserConfigDir.
func osConfigDir() string {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return xdg
		}

		if home, err := os.UserHomeDir(); err == nil && home != "" {
			return filepath.Join(home, ".config")
		}

		return ""
	case "darwin":
		if home, err := os.UserHomeDir(); err == nil && home != "" {
			return filepath.Join(home, "Library", "Application Support")
		}

		return ""
	default:
		dir, err := os.UserConfigDir()
		if err != nil {
			return ""
		}

		return dir
	}
}

// StorageConfigPath returns the full path to the storage config file under
// dataDir.
func StorageConfigPath(dataDir string) string {
	return filepath.Join(dataDir, storageConfigFileName)
}

// LogPath returns the full path to the append-only clipboard log file
// under dataDir (spec.md §6 "Local log file").
func LogPath(dataDir string) string {
	return filepath.Join(dataDir, "clipboard.log")
}

// PidPath returns the path to the "clippy watch" daemon's PID file under
// dataDir, used to prevent two background sync loops from running at once.
func PidPath(dataDir string) string {
	return filepath.Join(dataDir, "clippy.pid")
}
