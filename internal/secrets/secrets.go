// Package secrets resolves provider credentials at startup
package secrets

import (
	"fmt"
	"os"
)

// Credential names looked up in the store
const (
	BrokerClientIDName    = "DHAN_CLIENT_ID"
	BrokerAccessTokenName = "DHAN_ACCESS_TOKEN"
)

// Store resolves named credentials. The backing store is the process
// environment, hydrated from .env by the config loader.
type Store struct{}

// NewStore creates a new credential store
func NewStore() *Store {
	return &Store{}
}

// Get returns the named credential
func (s *Store) Get(name string) (string, error) {
	value := os.Getenv(name)
	if value == "" {
		return "", fmt.Errorf("credential %s is not set", name)
	}
	return value, nil
}

// BrokerCredentials returns the provider client id and access token.
// Absence is not fatal, the caller runs without a broker connection.
func (s *Store) BrokerCredentials() (clientID, accessToken string, err error) {
	clientID, err = s.Get(BrokerClientIDName)
	if err != nil {
		return "", "", err
	}
	accessToken, err = s.Get(BrokerAccessTokenName)
	if err != nil {
		return "", "", err
	}
	return clientID, accessToken, nil
}
