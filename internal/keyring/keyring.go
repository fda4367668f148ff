package keyring

import (
	"errors"
	"fmt"

	"github.com/julianstephens/architect/internal/constants"
	"github.com/zalando/go-keyring"
)

var (
	// ErrNotFound is returned when no credentials are found in the keyring
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Secret names a credential stored under the application's keyring service.
type Secret string

const (
	// ConnectionString is the postgres connection string.
	ConnectionString Secret = constants.DefaultKeyringUser
	// APIKey is the language model API key used by the completion service and the distill proxy.
	APIKey Secret = constants.APIKeyKeyringUser
)

// Get retrieves a secret from the OS keyring.
// Returns ErrNotFound if nothing is stored under that name.
func Get(s Secret) (string, error) {
	v, err := keyring.Get(constants.AppName, string(s))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return v, nil
}

// Set stores a secret in the OS keyring.
func Set(s Secret, value string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", s)
	}
	if err := keyring.Set(constants.AppName, string(s), value); err != nil {
		return fmt.Errorf("failed to store %s in keyring: %w", s, err)
	}
	return nil
}

// Delete removes a secret from the OS keyring.
func Delete(s Secret) error {
	if err := keyring.Delete(constants.AppName, string(s)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", s, err)
	}
	return nil
}

// GetConnectionString retrieves the database connection string from the OS keyring.
func GetConnectionString() (string, error) { return Get(ConnectionString) }

// SetConnectionString stores the database connection string in the OS keyring.
func SetConnectionString(connStr string) error { return Set(ConnectionString, connStr) }

// DeleteConnectionString removes the database connection string from the OS keyring.
func DeleteConnectionString() error { return Delete(ConnectionString) }

// GetAPIKey retrieves the language model API key from the OS keyring.
func GetAPIKey() (string, error) { return Get(APIKey) }

// SetAPIKey stores the language model API key in the OS keyring.
func SetAPIKey(key string) error { return Set(APIKey, key) }

// DeleteAPIKey removes the language model API key from the OS keyring.
func DeleteAPIKey() error { return Delete(APIKey) }

// ParseSecret maps a user-facing name ("db", "api-key", ...) to a Secret.
func ParseSecret(name string) (Secret, error) {
	switch name {
	case "db", "database", "connection", string(ConnectionString):
		return ConnectionString, nil
	case "api-key", "apikey", "llm", string(APIKey):
		return APIKey, nil
	default:
		return "", fmt.Errorf("unknown secret %q (want db or api-key)", name)
	}
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check and may not catch all failure scenarios.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
