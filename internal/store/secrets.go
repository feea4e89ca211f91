package store

import (
	"errors"
	"fmt"
	"os"

	"github.com/zalando/go-keyring"
)

// KeyringService is the default keychain service for server passwords.
// SFTPMAN_KEYRING_SERVICE overrides it for test isolation.
const KeyringService = "sftpman"

// SecretBackend keeps server passwords outside the credential document.
type SecretBackend interface {
	Get(server string) (string, error)
	Set(server, secret string) error
	Delete(server string) error
	Name() string
}

// ErrSecretNotFound is returned by Get when no secret is stored.
var ErrSecretNotFound = errors.New("secret not found")

// KeyringBackend stores passwords in the OS keychain (macOS Keychain,
// Secret Service on Linux, Windows Credential Manager).
type KeyringBackend struct {
	service string
}

// NewKeyringBackend returns a backend using the default service name.
func NewKeyringBackend() *KeyringBackend {
	service := KeyringService
	if s := os.Getenv("SFTPMAN_KEYRING_SERVICE"); s != "" {
		service = s
	}
	return &KeyringBackend{service: service}
}

func (k *KeyringBackend) Get(server string) (string, error) {
	secret, err := keyring.Get(k.service, server)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrSecretNotFound
	}
	if err != nil {
		return "", fmt.Errorf("keychain get %s: %w", server, err)
	}
	return secret, nil
}

func (k *KeyringBackend) Set(server, secret string) error {
	if err := keyring.Set(k.service, server, secret); err != nil {
		return fmt.Errorf("keychain set %s: %w", server, err)
	}
	return nil
}

func (k *KeyringBackend) Delete(server string) error {
	err := keyring.Delete(k.service, server)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keychain delete %s: %w", server, err)
	}
	return nil
}

func (k *KeyringBackend) Name() string {
	return "system keychain (" + k.service + ")"
}
