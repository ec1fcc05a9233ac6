package crypto

import (
	"encoding/base64"
	"fmt"

	"hubrr/internal/domain"
)

// B64 is the encoding used for key material on the wire.
func B64(b []byte) string { return base64.StdEncoding.EncodeToString(b) }

// FromB64 reverses B64.
func FromB64(s string) ([]byte, error) { return base64.StdEncoding.DecodeString(s) }

// X25519PrivateFromB64 decodes a base64 signed pre-key secret.
func X25519PrivateFromB64(s string) (domain.X25519Private, error) {
	raw, err := FromB64(s)
	if err != nil {
		return domain.X25519Private{}, err
	}
	defer clear(raw)
	var sec domain.X25519Private
	if len(raw) != len(sec) {
		return sec, fmt.Errorf("x25519 secret: want %d bytes, got %d", len(sec), len(raw))
	}
	copy(sec[:], raw)
	return sec, nil
}
