package auth

import (
	"os"
	"time"
)

// EnvironmentStore implements CredentialStore using environment variables.
// It is read-only and serves CI and one-off invocations.
type EnvironmentStore struct{}

// NewEnvironmentStore creates an environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

// Retrieve gets the token from CANVASGRAB_TOKEN. When CANVASGRAB_DOMAIN is
// set the token only applies to that domain.
func (e *EnvironmentStore) Retrieve(domain string) (*Account, error) {
	token := os.Getenv("CANVASGRAB_TOKEN")
	if token == "" {
		return nil, ErrCredentialsNotFound
	}

	envDomain := os.Getenv("CANVASGRAB_DOMAIN")
	if envDomain != "" && domain != "" && envDomain != domain {
		return nil, ErrCredentialsNotFound
	}
	if domain == "" {
		domain = envDomain
	}

	return &Account{
		Domain:       domain,
		Token:        token,
		LastModified: time.Now(),
	}, nil
}

// List returns a single account when the environment token is set
func (e *EnvironmentStore) List() ([]*Account, error) {
	account, err := e.Retrieve("")
	if err != nil {
		return []*Account{}, nil
	}
	return []*Account{account}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(domain string) error {
	return ErrStoreUnavailable
}

// Exists checks whether the environment token is set
func (e *EnvironmentStore) Exists(domain string) bool {
	return os.Getenv("CANVASGRAB_TOKEN") != ""
}
