package types

import "fmt"

const (
	// X25519KeySize is the size of Curve25519 public and private keys.
	X25519KeySize = 32
	// Ed25519PublicKeySize is the size of an Ed25519 public key.
	Ed25519PublicKeySize = 32
	// Ed25519PrivateKeySize is the size of an Ed25519 private key (seed || public).
	Ed25519PrivateKeySize = 64
	// SignatureSize is the size of a detached Ed25519 signature.
	SignatureSize = 64
)

// X25519Public is a Curve25519 public key.
type X25519Public [X25519KeySize]byte

// Slice returns the key as a []byte.
func (p X25519Public) Slice() []byte { return p[:] }

// IsZero reports whether the key is unset.
func (p X25519Public) IsZero() bool { return p == X25519Public{} }

// X25519Private is a Curve25519 private key.
type X25519Private [X25519KeySize]byte

// Slice returns the key as a []byte.
func (k X25519Private) Slice() []byte { return k[:] }

// Ed25519Public is an Ed25519 signing public key.
type Ed25519Public [Ed25519PublicKeySize]byte

// Slice returns the key as a []byte.
func (p Ed25519Public) Slice() []byte { return p[:] }

// IsZero reports whether the key is unset.
func (p Ed25519Public) IsZero() bool { return p == Ed25519Public{} }

// Ed25519Private is an Ed25519 signing private key (ed25519.PrivateKey layout).
type Ed25519Private [Ed25519PrivateKeySize]byte

// Slice returns the key as a []byte.
func (k Ed25519Private) Slice() []byte { return k[:] }

// ParseX25519Public copies b into an X25519Public, checking its length.
func ParseX25519Public(b []byte) (X25519Public, error) {
	var out X25519Public
	if len(b) != X25519KeySize {
		return out, fmt.Errorf("x25519 public: want %d bytes, got %d", X25519KeySize, len(b))
	}
	copy(out[:], b)
	return out, nil
}

// ParseX25519Private copies b into an X25519Private, checking its length.
func ParseX25519Private(b []byte) (X25519Private, error) {
	var out X25519Private
	if len(b) != X25519KeySize {
		return out, fmt.Errorf("x25519 private: want %d bytes, got %d", X25519KeySize, len(b))
	}
	copy(out[:], b)
	return out, nil
}

// ParseEd25519Public copies b into an Ed25519Public, checking its length.
func ParseEd25519Public(b []byte) (Ed25519Public, error) {
	var out Ed25519Public
	if len(b) != Ed25519PublicKeySize {
		return out, fmt.Errorf("ed25519 public: want %d bytes, got %d", Ed25519PublicKeySize, len(b))
	}
	copy(out[:], b)
	return out, nil
}

// ParseEd25519Private copies b into an Ed25519Private, checking its length.
func ParseEd25519Private(b []byte) (Ed25519Private, error) {
	var out Ed25519Private
	if len(b) != Ed25519PrivateKeySize {
		return out, fmt.Errorf("ed25519 private: want %d bytes, got %d", Ed25519PrivateKeySize, len(b))
	}
	copy(out[:], b)
	return out, nil
}
