package auth

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidCredentials indicates missing or malformed credential data
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCredentialsNotFound indicates no credentials stored under the name
	ErrCredentialsNotFound = errors.New("credentials not found")
	// ErrStoreUnavailable indicates the backend cannot perform the operation
	ErrStoreUnavailable = errors.New("credential store unavailable")
)

// Account holds a named Twitter API credential
type Account struct {
	// Name identifies the credential, e.g. "default" or an app name
	Name         string    `json:"name"`
	BearerToken  string    `json:"bearer_token"`
	LastModified time.Time `json:"last_modified"`
}

// CredentialStore is the interface for storing and retrieving credentials
type CredentialStore interface {
	// Store saves credentials for a given account
	Store(account *Account) error

	// Retrieve gets credentials for a specific account name
	Retrieve(name string) (*Account, error)

	// Delete removes credentials for a specific account name
	Delete(name string) error

	// Exists checks if credentials exist for an account name
	Exists(name string) bool
}

// DefaultAccountName is used when no account name is given
const DefaultAccountName = "default"

// Manager handles credential storage with fallback mechanisms
type Manager struct {
	stores []CredentialStore
}

// NewManager creates a credential manager trying the system keychain
// first and environment variables as a read-only fallback.
func NewManager() (*Manager, error) {
	var stores []CredentialStore

	keyringStore, err := NewKeyringStore()
	if err == nil {
		stores = append(stores, keyringStore)
	}

	stores = append(stores, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores creates a manager over explicit stores, used in tests
func NewManagerWithStores(stores ...CredentialStore) *Manager {
	return &Manager{stores: stores}
}

// Store saves credentials using the first store that accepts them
func (m *Manager) Store(account *Account) error {
	if account.Name == "" {
		account.Name = DefaultAccountName
	}
	if account.BearerToken == "" {
		return errors.New("bearer token is required")
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

// Retrieve gets credentials from the first store that has them
func (m *Manager) Retrieve(name string) (*Account, error) {
	if name == "" {
		name = DefaultAccountName
	}
	for _, store := range m.stores {
		if account, err := store.Retrieve(name); err == nil && account != nil {
			return account, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrCredentialsNotFound, name)
}

// Delete removes credentials from every store that has them
func (m *Manager) Delete(name string) error {
	if name == "" {
		name = DefaultAccountName
	}

	deleted := false
	for _, store := range m.stores {
		if store.Exists(name) {
			if err := store.Delete(name); err != nil {
				return err
			}
			deleted = true
		}
	}

	if !deleted {
		return fmt.Errorf("%w: %s", ErrCredentialsNotFound, name)
	}
	return nil
}

// Exists checks if any store has credentials for the name
func (m *Manager) Exists(name string) bool {
	if name == "" {
		name = DefaultAccountName
	}
	for _, store := range m.stores {
		if store.Exists(name) {
			return true
		}
	}
	return false
}
