// Package auth stores Canvas API tokens per domain so a token does not have
// to travel through argv or shell history on every run.
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Account holds the access token for one Canvas domain
type Account struct {
	Domain       string    `json:"domain"`
	Token        string    `json:"token"`
	LastModified time.Time `json:"last_modified"`
}

// CredentialStore is the interface for storing and retrieving tokens
type CredentialStore interface {
	// Store saves the token for a domain
	Store(account *Account) error

	// Retrieve gets the token for a domain
	Retrieve(domain string) (*Account, error)

	// List returns all stored accounts
	List() ([]*Account, error)

	// Delete removes the token for a domain
	Delete(domain string) error

	// Exists checks whether a token is stored for a domain
	Exists(domain string) bool
}

// Manager handles token storage with fallback backends: the system keychain
// when available, an encrypted file otherwise, and the environment as a
// read-only last resort
type Manager struct {
	stores []CredentialStore
}

// NewManager creates a credential manager with the available backends
func NewManager() (*Manager, error) {
	var stores []CredentialStore

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore)

	stores = append(stores, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// Store saves the token using the first backend that accepts it
func (m *Manager) Store(account *Account) error {
	if account.Domain == "" {
		return errors.New("domain is required")
	}
	if account.Token == "" {
		return errors.New("token is required")
	}

	account.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		if err := store.Store(account); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}

	if lastErr != nil {
		return fmt.Errorf("failed to store credentials: %w", lastErr)
	}
	return errors.New("no available credential stores")
}

// Retrieve gets the token for a domain from the first backend that has it
func (m *Manager) Retrieve(domain string) (*Account, error) {
	for _, store := range m.stores {
		if account, err := store.Retrieve(domain); err == nil && account != nil {
			return account, nil
		}
	}
	return nil, fmt.Errorf("no stored token for domain: %s", domain)
}

// List returns all stored accounts across backends, most recent version wins
func (m *Manager) List() ([]*Account, error) {
	accountMap := make(map[string]*Account)

	for _, store := range m.stores {
		accounts, err := store.List()
		if err != nil {
			continue
		}
		for _, account := range accounts {
			if existing, ok := accountMap[account.Domain]; !ok || account.LastModified.After(existing.LastModified) {
				accountMap[account.Domain] = account
			}
		}
	}

	var result []*Account
	for _, account := range accountMap {
		result = append(result, account)
	}
	return result, nil
}

// Delete removes the token for a domain from every backend
func (m *Manager) Delete(domain string) error {
	var deleted bool
	var lastErr error

	for _, store := range m.stores {
		if err := store.Delete(domain); err == nil {
			deleted = true
		} else {
			lastErr = err
		}
	}

	if !deleted && lastErr != nil {
		return fmt.Errorf("failed to delete credentials: %w", lastErr)
	}
	if !deleted {
		return fmt.Errorf("no stored token for domain: %s", domain)
	}
	return nil
}

// getConfigDir returns the configuration directory path
func getConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "canvasgrab")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "canvasgrab")
	default:
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "canvasgrab")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config", "canvasgrab")
		}
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return configDir, nil
}

// SanitizeAccount returns a copy of the account with the token masked, for
// display in listings and logs
func SanitizeAccount(account *Account) *Account {
	if account == nil {
		return nil
	}
	return &Account{
		Domain:       account.Domain,
		Token:        maskString(account.Token),
		LastModified: account.LastModified,
	}
}

// maskString masks all but the first 4 and last 4 characters of a string
func maskString(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// Errors
var (
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
)
