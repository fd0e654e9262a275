// Package keystore persists GridLock keys and ciphertexts as named,
// fingerprinted blobs in SQLite or Redis.
package keystore

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/zeebo/blake3"
)

// Common errors.
var (
	ErrNotFound     = errors.New("entry not found")
	ErrKindMismatch = errors.New("entry kind mismatch")
	ErrCorrupted    = errors.New("entry fingerprint mismatch")
)

// Kind is the type of object stored in an entry.
type Kind string

const (
	KindSecretKey  Kind = "secret-key"
	KindPublicKey  Kind = "public-key"
	KindCiphertext Kind = "ciphertext"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindSecretKey, KindPublicKey, KindCiphertext:
		return true
	}
	return false
}

// Entry is a named serialized object.
type Entry struct {
	Name        string    `json:"name"`
	Kind        Kind      `json:"kind"`
	Fingerprint []byte    `json:"fingerprint"`
	Data        []byte    `json:"data"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewEntry returns an entry holding data, fingerprinted and timestamped now.
func NewEntry(name string, kind Kind, data []byte) *Entry {
	return &Entry{
		Name:        name,
		Kind:        kind,
		Fingerprint: Fingerprint(data),
		Data:        data,
		CreatedAt:   time.Now().UTC(),
	}
}

// Fingerprint returns the BLAKE3-256 digest of data.
func Fingerprint(data []byte) []byte {
	sum := blake3.Sum256(data)
	return sum[:]
}

// Verify checks that the fingerprint matches the data.
func (e *Entry) Verify() error {
	if !bytes.Equal(e.Fingerprint, Fingerprint(e.Data)) {
		return fmt.Errorf("%w: %s", ErrCorrupted, e.Name)
	}
	return nil
}

// ShortFingerprint returns the first 8 bytes of the fingerprint in hex.
func (e *Entry) ShortFingerprint() string {
	if len(e.Fingerprint) < 8 {
		return hex.EncodeToString(e.Fingerprint)
	}
	return hex.EncodeToString(e.Fingerprint[:8])
}

func (e *Entry) check() error {
	if e.Name == "" {
		return errors.New("entry name is empty")
	}
	if !e.Kind.Valid() {
		return fmt.Errorf("invalid entry kind %q", e.Kind)
	}
	return nil
}

// Store defines the operations of a keystore backend.
type Store interface {
	// Put inserts or replaces the entry with the same name.
	Put(ctx context.Context, e *Entry) error
	// Get retrieves an entry by name.
	Get(ctx context.Context, name string) (*Entry, error)
	// Delete removes an entry by name.
	Delete(ctx context.Context, name string) error
	// List returns the names of all entries in lexical order.
	List(ctx context.Context) ([]string, error)
	// Close releases the backend connection.
	Close() error
}
