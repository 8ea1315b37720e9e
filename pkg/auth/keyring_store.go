package auth

import (
	"encoding/json"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "canvasgrab"
	keyringPrefix  = "canvas_"
)

// KeyringStore implements CredentialStore using the system keychain
type KeyringStore struct{}

// NewKeyringStore creates a keyring-based credential store. The keychain is
// probed with a throwaway entry; headless systems typically fail here and the
// manager falls back to the encrypted file store.
func NewKeyringStore() (*KeyringStore, error) {
	testKey := "test_availability"
	if err := keyring.Set(keyringService, testKey, "test"); err != nil {
		return nil, fmt.Errorf("keyring not available: %w", err)
	}
	_ = keyring.Delete(keyringService, testKey)

	return &KeyringStore{}, nil
}

// Store saves the account to the system keychain
func (k *KeyringStore) Store(account *Account) error {
	if account == nil || account.Domain == "" {
		return ErrInvalidCredentials
	}

	data, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}

	key := keyringPrefix + account.Domain
	if err := keyring.Set(keyringService, key, string(data)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}
	return nil
}

// Retrieve gets the account for a domain from the system keychain
func (k *KeyringStore) Retrieve(domain string) (*Account, error) {
	if domain == "" {
		return nil, ErrInvalidCredentials
	}

	key := keyringPrefix + domain
	data, err := keyring.Get(keyringService, key)
	if err != nil {
		if err == keyring.ErrNotFound {
			return nil, ErrCredentialsNotFound
		}
		return nil, fmt.Errorf("failed to retrieve from keyring: %w", err)
	}

	var account Account
	if err := json.Unmarshal([]byte(data), &account); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}
	return &account, nil
}

// List returns all stored accounts from the keychain. go-keyring cannot
// enumerate keys, so the keychain never contributes to listings.
func (k *KeyringStore) List() ([]*Account, error) {
	return []*Account{}, nil
}

// Delete removes the account for a domain from the system keychain
func (k *KeyringStore) Delete(domain string) error {
	if domain == "" {
		return ErrInvalidCredentials
	}

	key := keyringPrefix + domain
	if err := keyring.Delete(keyringService, key); err != nil {
		if err == keyring.ErrNotFound {
			return ErrCredentialsNotFound
		}
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	return nil
}

// Exists checks whether a token for the domain is in the keychain
func (k *KeyringStore) Exists(domain string) bool {
	if domain == "" {
		return false
	}
	_, err := keyring.Get(keyringService, keyringPrefix+domain)
	return err == nil
}
