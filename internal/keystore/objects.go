package keystore

import (
	"context"
	"encoding"
	"fmt"

	"github.com/KAIST-CryptLab/gridlock/core/gridlock"
)

// Save serializes obj and stores it under name.
func Save(ctx context.Context, s Store, name string, kind Kind, obj encoding.BinaryMarshaler) error {
	data, err := obj.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal %s: %w", kind, err)
	}
	return s.Put(ctx, NewEntry(name, kind, data))
}

// Load reads the entry name, checks its kind and fingerprint, and decodes
// it into obj.
func Load(ctx context.Context, s Store, name string, kind Kind, obj encoding.BinaryUnmarshaler) (*Entry, error) {
	e, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	if e.Kind != kind {
		return nil, fmt.Errorf("%w: %s is a %s, want %s", ErrKindMismatch, name, e.Kind, kind)
	}

	if err := e.Verify(); err != nil {
		return nil, err
	}

	if err := obj.UnmarshalBinary(e.Data); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", kind, err)
	}

	return e, nil
}

func SaveSecretKey(ctx context.Context, s Store, name string, sk *gridlock.SecretKey) error {
	return Save(ctx, s, name, KindSecretKey, sk)
}

func LoadSecretKey(ctx context.Context, s Store, name string) (sk *gridlock.SecretKey, err error) {
	sk = new(gridlock.SecretKey)
	if _, err = Load(ctx, s, name, KindSecretKey, sk); err != nil {
		return nil, err
	}
	return
}

func SavePublicKey(ctx context.Context, s Store, name string, pk *gridlock.PublicKey) error {
	return Save(ctx, s, name, KindPublicKey, pk)
}

func LoadPublicKey(ctx context.Context, s Store, name string) (pk *gridlock.PublicKey, err error) {
	pk = new(gridlock.PublicKey)
	if _, err = Load(ctx, s, name, KindPublicKey, pk); err != nil {
		return nil, err
	}
	return
}

func SaveCiphertext(ctx context.Context, s Store, name string, ct *gridlock.Ciphertext) error {
	return Save(ctx, s, name, KindCiphertext, ct)
}

func LoadCiphertext(ctx context.Context, s Store, name string) (ct *gridlock.Ciphertext, err error) {
	ct = new(gridlock.Ciphertext)
	if _, err = Load(ctx, s, name, KindCiphertext, ct); err != nil {
		return nil, err
	}
	return
}
