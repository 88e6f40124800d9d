package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

type BackendConfig struct {
	Type           string `toml:"type"`
	URL            string `toml:"url"`
	Model          string `toml:"model"`
	SystemPrompt   string `toml:"system_prompt,omitempty"`
	TimeoutSeconds int    `toml:"request_timeout_seconds"`
}

type SpeechConfig struct {
	Command  string   `toml:"command"`
	Args     []string `toml:"args"`
	Language string   `toml:"language"`
}

type StorageConfig struct {
	Backend   string `toml:"backend"` // "json" or "sqlite"
	SessionID string `toml:"session_id"`
}

type ResearchConfig struct {
	Enabled       bool   `toml:"enabled"`
	ScholarURL    string `toml:"scholar_url"`
	Limit         int    `toml:"limit"`
	PixabayURL    string `toml:"pixabay_url"`
	FallbackImage string `toml:"fallback_image"`
}

type SecurityConfig struct {
	CredentialStorage string `toml:"credentials"` // "plaintext" or "ssh_key"
	SSHKeyPath        string `toml:"ssh_key_path"`
}

type UserConfig struct {
	Backend  BackendConfig  `toml:"backend"`
	Speech   SpeechConfig   `toml:"speech"`
	Storage  StorageConfig  `toml:"storage"`
	Research ResearchConfig `toml:"research"`
	Security SecurityConfig `toml:"security"`
}

type Config struct {
	DataDirectory string
	Backend       BackendConfig
	Speech        SpeechConfig
	Storage       StorageConfig
	Research      ResearchConfig
	Security      SecurityConfig

	CredentialStore *CredentialStore
	Keybindings     *KeyBindingsConfig
}

const (
	StorageJSON   = "json"
	StorageSQLite = "sqlite"
)

var Debug = false

// DebugLog is a no-op until InitDebugLog enables it.
var DebugLog = zap.NewNop()

// Option adjusts a Config after files and environment are applied.
// Command line flags are passed this way.
type Option func(*Config)

func WithDataDir(dir string) Option {
	return func(c *Config) {
		if dir != "" {
			c.DataDirectory = dir
		}
	}
}

func WithBackend(backend string) Option {
	return func(c *Config) {
		if backend != "" {
			c.Backend.Type = backend
		}
	}
}

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

// SessionDir is where the JSON persister keeps conversation files.
func (c *Config) SessionDir() string {
	return filepath.Join(c.DataDir(), "sessions")
}

// DatabasePath is the sqlite persister's database file.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir(), "wildwise.db")
}

// APIKey returns the stored key for a provider, falling back to the
// conventional environment variable.
func (c *Config) APIKey(providerID string) string {
	if c.CredentialStore != nil {
		if key := c.CredentialStore.Get(providerID); key != "" {
			return key
		}
	}
	if env, ok := apiKeyEnv[providerID]; ok {
		return os.Getenv(env)
	}
	return ""
}

var apiKeyEnv = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"pixabay":   "PIXABAY_API_KEY",
}

func (c *Config) applyUserConfig(u *UserConfig) {
	c.Backend = u.Backend
	c.Speech = u.Speech
	c.Storage = u.Storage
	c.Research = u.Research
	c.Security = u.Security
}

func (c *Config) applyEnvOverrides() {
	if dataDir := os.Getenv("WILDWISE_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
	if backend := os.Getenv("WILDWISE_BACKEND"); backend != "" {
		c.Backend.Type = backend
	}
	if url := os.Getenv("WILDWISE_BACKEND_URL"); url != "" {
		c.Backend.URL = url
	}
	if model := os.Getenv("WILDWISE_MODEL"); model != "" {
		c.Backend.Model = model
	}
	if command := os.Getenv("WILDWISE_SPEECH_COMMAND"); command != "" {
		c.Speech.Command = command
	}
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case StorageJSON, StorageSQLite:
	default:
		return fmt.Errorf("unknown storage backend: %q", c.Storage.Backend)
	}
	if c.Storage.SessionID == "" {
		return errors.New("storage session_id cannot be empty")
	}
	if c.Backend.TimeoutSeconds < 0 {
		return fmt.Errorf("request_timeout_seconds cannot be negative: %d", c.Backend.TimeoutSeconds)
	}
	switch SecurityMethod(c.Security.CredentialStorage) {
	case SecurityPlainText, SecuritySSHKey:
	default:
		return fmt.Errorf("unknown security method: %s", c.Security.CredentialStorage)
	}
	return nil
}

func CheckDebug() bool {
	debug := os.Getenv("WILDWISE_DEBUG")
	return debug == "true" || debug == "1"
}

// InitDebugLog points DebugLog at <dataDir>/debug.log when debugging is
// enabled by WILDWISE_DEBUG or force. The returned function flushes the log.
func InitDebugLog(dataDir string, force bool) func() {
	if !force && !CheckDebug() {
		return func() {}
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	// Create debug log with secure permissions (0600 - may contain sensitive debug info)
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return func() {}
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(f), zapcore.DebugLevel)

	DebugLog = zap.New(core, zap.AddCaller())
	DebugLog.Info("=== Debug logging started ===", zap.String("WILDWISE_DEBUG", os.Getenv("WILDWISE_DEBUG")))
	DebugLog.Info("Log path", zap.String("path", logPath))

	return func() {
		_ = DebugLog.Sync()
		_ = f.Close()
	}
}

// LoadDotEnv reads a .env file from the working directory. A missing file is ignored.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

func Load(opts ...Option) (*Config, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}

	cfg := &Config{DataDirectory: DefaultSystemConfig().DataDirectory}
	cfg.applyUserConfig(DefaultUserConfig())

	// The data directory has to be known before config.toml can be found.
	probe := &Config{}
	probe.applyEnvOverrides()
	for _, opt := range opts {
		opt(probe)
	}

	if probe.DataDirectory != "" {
		cfg.DataDirectory = probe.DataDirectory
	} else {
		systemCfg, err := LoadSystemConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load system config: %w", err)
		}
		cfg.DataDirectory = systemCfg.DataDirectory
	}

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// Ensure data directory has correct permissions (fix if needed)
	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	userCfg, err := LoadUserConfig(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	cfg.applyUserConfig(userCfg)
	cfg.applyEnvOverrides()
	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	keybindings, err := LoadKeybindings(dataDir)
	if err != nil {
		return nil, err
	}
	cfg.Keybindings = keybindings

	store := NewCredentialStore(SecurityMethod(cfg.Security.CredentialStorage), ExpandPath(cfg.Security.SSHKeyPath))
	store.SetPassphrase(os.Getenv("WILDWISE_SSH_PASSPHRASE"))
	if err := store.Load(dataDir); err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	cfg.CredentialStore = store

	return cfg, nil
}
