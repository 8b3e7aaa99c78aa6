// Package keybackend provides CredentialStore implementations that map
// access keys to a secret key and the owner id the key acts as.
package keybackend

import (
	"fmt"

	"github.com/sagarc03/notes"
)

// MapCredentialStore retrieves credentials from an in-memory map.
// Suitable for configuration file-based key storage.
type MapCredentialStore struct {
	keys map[string]notes.Credential
}

// NewMapCredentialStore creates a new map-based store with the given access key to credential mapping.
func NewMapCredentialStore(keys map[string]notes.Credential) *MapCredentialStore {
	return &MapCredentialStore{keys: keys}
}

// Lookup retrieves the credential for the given access key from the map.
// An empty OwnerID is filled with the access key itself.
func (s *MapCredentialStore) Lookup(accessKey string) (notes.Credential, error) {
	cred, found := s.keys[accessKey]
	if !found {
		return notes.Credential{}, fmt.Errorf("lookup %s: %w", accessKey, ErrKeyNotFound)
	}
	if cred.OwnerID == "" {
		cred.OwnerID = accessKey
	}
	return cred, nil
}
