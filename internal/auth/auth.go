// Package auth stores and resolves the Kernel API key used to create
// browser sessions. Keys are kept in the OS keychain; environment
// variables take precedence so CI and scripts keep working.
package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "chatdeck"
	keyringUser    = "api-key"
	keyringTOTP    = "totp-secret"

	// EnvAPIKey overrides any stored key when set.
	EnvAPIKey = "CHATDECK_API_KEY"
	// EnvKernelAPIKey is honored for compatibility with other Kernel tooling.
	EnvKernelAPIKey = "KERNEL_API_KEY"
)

// ErrNotFound is returned when no API key is available from the
// environment or the keychain.
var ErrNotFound = errors.New("no API key found: set CHATDECK_API_KEY or run 'chatdeck auth login'")

// Store persists the API key in the OS keychain. The service and user
// fields are fixed; overriding them is only useful in tests.
type Store struct {
	service string
	user    string
}

// NewStore returns a Store backed by the system keychain.
func NewStore() *Store {
	return &Store{service: keyringService, user: keyringUser}
}

// Save writes the API key to the keychain, replacing any existing entry.
func (s *Store) Save(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("API key is empty")
	}
	if err := keyring.Set(s.service, s.user, key); err != nil {
		return fmt.Errorf("failed to store API key in keychain: %w", err)
	}
	return nil
}

// Load reads the API key from the keychain.
func (s *Store) Load() (string, error) {
	key, err := keyring.Get(s.service, s.user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to read API key from keychain: %w", err)
	}
	return key, nil
}

// Delete removes the stored API key. Deleting a key that does not exist
// is not an error.
func (s *Store) Delete() error {
	if err := keyring.Delete(s.service, s.user); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to remove API key from keychain: %w", err)
	}
	return nil
}

// SaveTOTPSecret stores the base32 secret used for the chat site's
// two-factor prompt.
func (s *Store) SaveTOTPSecret(secret string) error {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return fmt.Errorf("TOTP secret is empty")
	}
	if err := keyring.Set(s.service, keyringTOTP, secret); err != nil {
		return fmt.Errorf("failed to store TOTP secret in keychain: %w", err)
	}
	return nil
}

// LoadTOTPSecret reads the stored TOTP secret.
func (s *Store) LoadTOTPSecret() (string, error) {
	secret, err := keyring.Get(s.service, keyringTOTP)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("no TOTP secret stored: run 'chatdeck auth totp --set <secret>' first")
		}
		return "", fmt.Errorf("failed to read TOTP secret from keychain: %w", err)
	}
	return secret, nil
}

// ResolveAPIKey returns the API key to use, checking CHATDECK_API_KEY,
// then KERNEL_API_KEY, then the keychain.
func (s *Store) ResolveAPIKey() (string, error) {
	if key := os.Getenv(EnvAPIKey); key != "" {
		return key, nil
	}
	if key := os.Getenv(EnvKernelAPIKey); key != "" {
		return key, nil
	}
	return s.Load()
}
