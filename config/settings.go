package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Two TOML files configure WildWise:
//
//	~/.config/wildwise/settings.toml   SystemConfig: where the data directory is
//	<data_directory>/config.toml       UserConfig: backend, speech, storage, research
//
// Both are created from their commented templates on first load, and
// both are decoded over the defaults so missing keys keep default values.

func userConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config.toml")
}

func LoadSystemConfig() (*SystemConfig, error) {
	cfg := DefaultSystemConfig()
	if err := decodeOrCreate(GetSettingsFilePath(), GenerateSystemConfigTemplate(), "system config", cfg); err != nil {
		return nil, err
	}
	if cfg.DataDirectory == "" {
		cfg.DataDirectory = DefaultSystemConfig().DataDirectory
	}
	return cfg, nil
}

func LoadUserConfig(dataDir string) (*UserConfig, error) {
	cfg := DefaultUserConfig()
	if err := decodeOrCreate(userConfigPath(dataDir), GenerateUserConfigTemplate(), "user config", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func SaveSystemConfig(cfg *SystemConfig) error {
	return encodeFile(GetSettingsFilePath(), cfg)
}

func SaveUserConfig(cfg *UserConfig, dataDir string) error {
	return encodeFile(userConfigPath(dataDir), cfg)
}

func CreateDefaultSystemConfig() error {
	return writeTemplate(GetSettingsFilePath(), GenerateSystemConfigTemplate())
}

func CreateDefaultUserConfig(dataDir string) error {
	return writeTemplate(userConfigPath(dataDir), GenerateUserConfigTemplate())
}

// decodeOrCreate decodes path into v, or writes template there when the file
// does not exist yet and leaves v untouched
func decodeOrCreate(path, template, kind string, v any) error {
	if !FileExists(path) {
		return writeTemplate(path, template)
	}
	if _, err := toml.DecodeFile(path, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", kind, err)
	}
	return nil
}

// writeTemplate never overwrites an existing file
func writeTemplate(path, template string) error {
	if FileExists(path) {
		return nil
	}
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(template), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func encodeFile(path string, v any) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
