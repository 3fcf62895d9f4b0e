package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/suppleflow/internal/constants"
)

var (
	// ErrNotFound is returned when no secret is stored under the requested entry
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
	// ErrUnknownEntry is returned for entry names outside Entries()
	ErrUnknownEntry = errors.New("unknown keyring entry")
)

// Entries are the keyring users the application reads, keyed by the short
// name accepted on the command line.
var Entries = map[string]string{
	"db":        constants.DefaultKeyringUser,
	"openai":    constants.KeyringOpenAIUser,
	"gemini":    constants.KeyringGeminiUser,
	"anthropic": constants.KeyringAnthropicUser,
}

// ResolveEntry maps a short entry name to its keyring user.
func ResolveEntry(name string) (string, error) {
	user, ok := Entries[name]
	if !ok {
		return "", fmt.Errorf("%w: %q (expected db, openai, gemini or anthropic)", ErrUnknownEntry, name)
	}
	return user, nil
}

// Get retrieves the secret stored for user.
func Get(user string) (string, error) {
	secret, err := keyring.Get(constants.AppName, user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return secret, nil
}

// Set stores secret for user.
func Set(user, secret string) error {
	if secret == "" {
		return errors.New("secret cannot be empty")
	}
	if err := keyring.Set(constants.AppName, user, secret); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

// Delete removes the secret stored for user.
func Delete(user string) error {
	if err := keyring.Delete(constants.AppName, user); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// GetConnectionString retrieves the database connection string from the OS keyring.
// Returns ErrNotFound if no credentials are stored.
func GetConnectionString() (string, error) {
	return Get(constants.DefaultKeyringUser)
}

// SetConnectionString stores the database connection string in the OS keyring.
func SetConnectionString(connStr string) error {
	if connStr == "" {
		return errors.New("connection string cannot be empty")
	}
	return Set(constants.DefaultKeyringUser, connStr)
}

// DeleteConnectionString removes the database connection string from the OS keyring.
func DeleteConnectionString() error {
	return Delete(constants.DefaultKeyringUser)
}

// APIKey returns envValue when set, otherwise the key stored under user.
// A missing or unavailable keyring yields "".
func APIKey(envValue, user string) string {
	if envValue != "" || user == "" {
		return envValue
	}
	key, err := Get(user)
	if err != nil {
		return ""
	}
	return key
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check and may not catch all failure scenarios.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	// ErrNotFound means the keyring answered, it is just empty.
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
