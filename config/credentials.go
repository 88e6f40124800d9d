package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// SecurityMethod selects how API keys are kept on disk
type SecurityMethod string

const (
	SecurityPlainText SecurityMethod = "plaintext"
	SecuritySSHKey    SecurityMethod = "ssh_key"
)

// CredentialStore holds the API keys of the openai, anthropic and pixabay
// services, keyed by service id.
//
// plaintext: <data_dir>/credentials.toml, a [credentials] table
// ssh_key:   <data_dir>/credentials.enc, JSON sealed with a key derived from
// the user's SSH private key
type CredentialStore struct {
	method SecurityMethod
	keys   map[string]string
	sealer *sshSealer
}

func NewCredentialStore(method SecurityMethod, sshKeyPath string) *CredentialStore {
	s := &CredentialStore{
		method: method,
		keys:   map[string]string{},
	}
	if method == SecuritySSHKey {
		s.sealer = &sshSealer{keyPath: sshKeyPath}
	}
	return s
}

// SetPassphrase supplies the passphrase of an encrypted SSH key
func (s *CredentialStore) SetPassphrase(passphrase string) {
	if s.sealer != nil {
		s.sealer.setPassphrase(passphrase)
	}
}

func (s *CredentialStore) Get(service string) string {
	return s.keys[service]
}

func (s *CredentialStore) Set(service, apiKey string) {
	s.keys[service] = apiKey
}

func (s *CredentialStore) Delete(service string) {
	delete(s.keys, service)
}

func (s *CredentialStore) Method() SecurityMethod {
	return s.method
}

// Load replaces the in-memory keys with the file for the configured method.
// A missing file leaves the store empty.
func (s *CredentialStore) Load(dataDir string) error {
	path, err := s.path(dataDir)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		s.keys = map[string]string{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read credentials: %w", err)
	}

	keys, err := s.decode(data)
	if err != nil {
		return err
	}
	if keys == nil {
		keys = map[string]string{}
	}
	s.keys = keys
	return nil
}

// Save writes the keys with 0600 permissions
func (s *CredentialStore) Save(dataDir string) error {
	path, err := s.path(dataDir)
	if err != nil {
		return err
	}

	data, err := s.encode()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return nil
}

func (s *CredentialStore) path(dataDir string) (string, error) {
	switch s.method {
	case SecurityPlainText:
		return filepath.Join(dataDir, "credentials.toml"), nil
	case SecuritySSHKey:
		return filepath.Join(dataDir, "credentials.enc"), nil
	default:
		return "", fmt.Errorf("unknown security method: %s", s.method)
	}
}

type credentialsFile struct {
	Credentials map[string]string `toml:"credentials"`
}

func (s *CredentialStore) decode(data []byte) (map[string]string, error) {
	if s.sealer == nil {
		var cf credentialsFile
		if _, err := toml.Decode(string(data), &cf); err != nil {
			return nil, fmt.Errorf("failed to parse credentials file: %w", err)
		}
		return cf.Credentials, nil
	}

	plain, err := s.sealer.open(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt credentials: %w", err)
	}
	var keys map[string]string
	if err := json.Unmarshal(plain, &keys); err != nil {
		return nil, fmt.Errorf("failed to parse decrypted credentials: %w", err)
	}
	return keys, nil
}

func (s *CredentialStore) encode() ([]byte, error) {
	if s.sealer == nil {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(credentialsFile{Credentials: s.keys}); err != nil {
			return nil, fmt.Errorf("failed to encode credentials: %w", err)
		}
		return buf.Bytes(), nil
	}

	plain, err := json.Marshal(s.keys)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize credentials: %w", err)
	}
	sealed, err := s.sealer.seal(plain)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt credentials: %w", err)
	}
	return sealed, nil
}
