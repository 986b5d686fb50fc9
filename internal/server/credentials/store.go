// Package credentials holds the login credential table. Secrets are kept as
// salted argon2id hashes and compared in constant time.
package credentials

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/chatgate/internal/common"
	"github.com/dmitrijs2005/chatgate/internal/cryptox"
)

const saltSize = 16

// Credential is a username with its hashed secret.
type Credential struct {
	Username string
	Salt     []byte
	Hash     []byte
}

// Matches reports whether secret hashes to the stored value.
func (c *Credential) Matches(secret string) bool {
	return cryptox.Equal(c.Hash, HashSecret([]byte(secret), c.Salt))
}

// Store looks credentials up by exact username. Missing users yield
// common.ErrorNotFound.
type Store interface {
	Lookup(ctx context.Context, username string) (*Credential, error)
}

// HashSecret derives the stored verifier for secret.
func HashSecret(secret, salt []byte) []byte {
	return cryptox.DeriveKey(secret, salt)
}

// NewCredential hashes secret under a fresh random salt.
func NewCredential(username, secret string) (*Credential, error) {
	salt, err := cryptox.RandomBytes(saltSize)
	if err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return &Credential{
		Username: username,
		Salt:     salt,
		Hash:     HashSecret([]byte(secret), salt),
	}, nil
}

// MemoryStore is an immutable in-memory Store built once at startup.
type MemoryStore struct {
	creds map[string]*Credential
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore hashes every username → password pair in users.
func NewMemoryStore(users map[string]string) (*MemoryStore, error) {
	creds := make(map[string]*Credential, len(users))
	for username, secret := range users {
		if username == "" {
			return nil, fmt.Errorf("empty username in credential table")
		}
		c, err := NewCredential(username, secret)
		if err != nil {
			return nil, err
		}
		creds[username] = c
	}
	return &MemoryStore{creds: creds}, nil
}

func (s *MemoryStore) Lookup(ctx context.Context, username string) (*Credential, error) {
	c, ok := s.creds[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return c, nil
}

// Len returns the number of stored credentials.
func (s *MemoryStore) Len() int {
	return len(s.creds)
}
