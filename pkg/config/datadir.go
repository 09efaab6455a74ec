package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// DefaultDataDir returns the OS-appropriate default data directory for
// wayline. $WAYLINE_DIR overrides everything.
//
//   - macOS:   ~/Library/Application Support/wayline
//   - Linux:   $XDG_DATA_HOME/wayline (fallback ~/.local/share/wayline)
//   - Windows: %LOCALAPPDATA%\wayline (fallback %APPDATA%\wayline)
func DefaultDataDir() string {
	if dir := os.Getenv("WAYLINE_DIR"); dir != "" {
		return dir
	}
	return defaultDataDirForOS(runtime.GOOS)
}

func defaultDataDirForOS(goos string) string {
	home, _ := os.UserHomeDir()

	switch goos {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "wayline")
	case "windows":
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return filepath.Join(dir, "wayline")
		}
		if dir := os.Getenv("APPDATA"); dir != "" {
			return filepath.Join(dir, "wayline")
		}
		return filepath.Join(home, "wayline")
	default: // linux, freebsd, etc.
		if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
			return filepath.Join(dir, "wayline")
		}
		return filepath.Join(home, ".local", "share", "wayline")
	}
}
