package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
)

// ErrPassphraseRequired is returned when the SSH key is encrypted and no
// passphrase was supplied (see WILDWISE_SSH_PASSPHRASE).
var ErrPassphraseRequired = errors.New("SSH key is encrypted: passphrase required")

// keyDerivationMessage is signed to derive the sealing key; changing it
// orphans every existing credentials.enc
var keyDerivationMessage = []byte("wildwise-encryption-key-derivation-v1")

// sshSealer seals data with AES-256-GCM under a key derived from an SSH
// signature. Ed25519 and RSA PKCS#1 v1.5 signatures are deterministic, so the
// same private key always yields the same AES key.
//
// Sealed layout: nonce || ciphertext+tag
type sshSealer struct {
	keyPath    string
	passphrase string
	aead       cipher.AEAD
}

func (s *sshSealer) setPassphrase(passphrase string) {
	if passphrase != s.passphrase {
		s.passphrase = passphrase
		s.aead = nil
	}
}

func (s *sshSealer) seal(plain []byte) ([]byte, error) {
	aead, err := s.cipher()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plain, nil), nil
}

func (s *sshSealer) open(sealed []byte) ([]byte, error) {
	aead, err := s.cipher()
	if err != nil {
		return nil, err
	}
	n := aead.NonceSize()
	if len(sealed) < n {
		return nil, errors.New("ciphertext too short")
	}
	plain, err := aead.Open(nil, sealed[:n], sealed[n:], nil)
	if err != nil {
		return nil, fmt.Errorf("wrong SSH key or corrupted file: %w", err)
	}
	return plain, nil
}

// cipher loads the SSH key on first use
func (s *sshSealer) cipher() (cipher.AEAD, error) {
	if s.aead != nil {
		return s.aead, nil
	}

	signer, err := s.signer()
	if err != nil {
		return nil, err
	}
	sig, err := signer.Sign(rand.Reader, keyDerivationMessage)
	if err != nil {
		return nil, fmt.Errorf("failed to derive encryption key: %w", err)
	}
	key := sha256.Sum256(sig.Blob)

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	DebugLog.Debug("[Credentials] sealing key derived",
		zap.String("key", s.keyPath),
		zap.String("type", signer.PublicKey().Type()))
	s.aead = aead
	return aead, nil
}

func (s *sshSealer) signer() (ssh.Signer, error) {
	pemBytes, err := os.ReadFile(s.keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read SSH key: %w", err)
	}

	signer, err := ssh.ParsePrivateKey(pemBytes)
	var missing *ssh.PassphraseMissingError
	switch {
	case err == nil:
		return signer, nil
	case !errors.As(err, &missing):
		return nil, fmt.Errorf("invalid SSH key: %w", err)
	case s.passphrase == "":
		return nil, ErrPassphraseRequired
	}

	signer, err = ssh.ParsePrivateKeyWithPassphrase(pemBytes, []byte(s.passphrase))
	if err != nil {
		return nil, fmt.Errorf("failed to parse SSH key (wrong passphrase?): %w", err)
	}
	return signer, nil
}

// IsSSHKeyEncrypted reports whether the key at keyPath needs a passphrase
func IsSSHKeyEncrypted(keyPath string) (bool, error) {
	pemBytes, err := os.ReadFile(keyPath)
	if err != nil {
		return false, fmt.Errorf("failed to read SSH key: %w", err)
	}

	_, err = ssh.ParsePrivateKey(pemBytes)
	var missing *ssh.PassphraseMissingError
	switch {
	case err == nil:
		return false, nil
	case errors.As(err, &missing):
		return true, nil
	default:
		return false, fmt.Errorf("invalid SSH key: %w", err)
	}
}
