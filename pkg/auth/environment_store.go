package auth

import (
	"os"
	"time"
)

// EnvironmentStore implements CredentialStore using environment variables.
// It is read-only and always resolves to the same token regardless of the
// account name asked for.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

// Retrieve gets the bearer token from XFOLLOWERS_BEARER_TOKEN
func (e *EnvironmentStore) Retrieve(name string) (*Account, error) {
	token := os.Getenv("XFOLLOWERS_BEARER_TOKEN")
	if token == "" {
		return nil, ErrCredentialsNotFound
	}

	if name == "" {
		name = DefaultAccountName
	}

	return &Account{
		Name:         name,
		BearerToken:  token,
		LastModified: time.Now(),
	}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(name string) error {
	return ErrStoreUnavailable
}

// Exists checks if an environment token is set
func (e *EnvironmentStore) Exists(name string) bool {
	return os.Getenv("XFOLLOWERS_BEARER_TOKEN") != ""
}
