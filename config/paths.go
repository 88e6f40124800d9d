package config

import (
	"os"
	"path/filepath"
	"strings"
)

// GetConfigDir holds settings.toml: ~/.config/wildwise on every platform
func GetConfigDir() string {
	return filepath.Join(GetHomeDir(), ".config", "wildwise")
}

func GetSettingsFilePath() string {
	return filepath.Join(GetConfigDir(), "settings.toml")
}

// GetHomeDir is $HOME (%USERPROFILE% on Windows), or the filesystem root
// when neither is set
func GetHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return home
	}
	return string(filepath.Separator)
}

// ExpandPath resolves a leading ~ and $VARS, then cleans the result.
// "" stays "".
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	switch {
	case path == "~":
		path = GetHomeDir()
	case strings.HasPrefix(path, "~/"):
		path = filepath.Join(GetHomeDir(), path[2:])
	}
	return filepath.Clean(os.ExpandEnv(path))
}

// EnsureDir creates path as a user-only directory
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0700)
}

func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// EnsureDataDirPermissions creates dataDir, or tightens it back to 0700
// when it has been opened up. The directory holds the conversation and
// credentials.
func EnsureDataDirPermissions(dataDir string) error {
	info, err := os.Stat(dataDir)
	if os.IsNotExist(err) {
		return EnsureDir(dataDir)
	}
	if err != nil {
		return err
	}
	if info.Mode().Perm() == 0700 {
		return nil
	}
	return os.Chmod(dataDir, 0700)
}
