package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"wildwise/model"
)

// sessionFile is the on-disk layout of one conversation
type sessionFile struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Messages  []model.Message `json:"messages"`
}

// SessionStorage persists one conversation as <sessionsDir>/<id>.json.
// It implements model.HistoryPersister.
type SessionStorage struct {
	sessionsDir string
	id          string
	createdAt   time.Time
}

// NewSessionStorage creates a new session storage for the given session key
func NewSessionStorage(sessionsDir, sessionID string) (*SessionStorage, error) {
	// Create sessions directory if it doesn't exist (0700 - user-only access)
	if err := os.MkdirAll(sessionsDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}

	return &SessionStorage{
		sessionsDir: sessionsDir,
		id:          SanitizeFilename(sessionID),
	}, nil
}

// Path returns the file the conversation is stored in
func (s *SessionStorage) Path() string {
	return filepath.Join(s.sessionsDir, s.id+".json")
}

// Save writes the full history. The file is replaced atomically so a crash
// mid-write leaves the previous snapshot intact.
func (s *SessionStorage) Save(history []model.Message) error {
	now := time.Now()
	if s.createdAt.IsZero() {
		s.createdAt = now
	}
	if history == nil {
		history = []model.Message{}
	}

	data, err := json.MarshalIndent(sessionFile{
		ID:        s.id,
		CreatedAt: s.createdAt,
		UpdatedAt: now,
		Messages:  history,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	tmp, err := os.CreateTemp(s.sessionsDir, s.id+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp session file: %w", err)
	}
	defer os.Remove(tmp.Name())

	// Use 0600 permissions - session files contain conversation history
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set session file permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.Path()); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}

	return nil
}

// Load reads the stored history, returning model.ErrNoHistory when the
// session has never been saved
func (s *SessionStorage) Load() ([]model.Message, error) {
	data, err := os.ReadFile(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return nil, model.ErrNoHistory
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var session sessionFile
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	s.createdAt = session.CreatedAt
	if session.Messages == nil {
		return []model.Message{}, nil
	}
	return session.Messages, nil
}

// SanitizeFilename removes or replaces characters that are invalid in filenames
func SanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "-", "\\", "-", ":", "-", "*", "-", "?", "-", "\"", "-",
		"<", "-", ">", "-", "|", "-", " ", "-", "\n", "-", "\r", "-",
	)
	name = replacer.Replace(name)

	// Remove leading/trailing hyphens and dots
	name = strings.Trim(name, "-.")

	if len(name) > 50 {
		name = name[:50]
	}

	if name == "" {
		name = "session"
	}

	return name
}

// GenerateExportPath generates a default export path in the user's
// Downloads directory for the given format
func GenerateExportPath(sessionID string, format Format) string {
	homeDir := os.Getenv("HOME")
	if homeDir == "" {
		homeDir = os.Getenv("USERPROFILE") // Windows fallback
	}

	timestamp := time.Now().Format("20060102-150405")
	filename := fmt.Sprintf("%s-%s%s", SanitizeFilename(sessionID), timestamp, format.Extension())

	return filepath.Join(homeDir, "Downloads", filename)
}
