package crypto

import (
	"crypto/rand"
	"unicode/utf8"

	"golang.org/x/crypto/nacl/box"

	"hubrr/internal/domain"
	"hubrr/internal/util/memzero"
)

// SealFor encrypts plaintext to recipient with a fresh ephemeral key pair and
// a fresh random nonce. The ephemeral secret is wiped before returning.
func SealFor(recipient domain.X25519Public, plaintext []byte) (domain.PackedCiphertext, error) {
	ephPriv, ephPub, err := GenerateX25519()
	if err != nil {
		return domain.PackedCiphertext{}, err
	}

	var nonce [domain.NonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return domain.PackedCiphertext{}, err
	}

	peer := [32]byte(recipient)
	sec := [32]byte(ephPriv)
	defer memzero.ZeroAll(ephPriv[:], sec[:])

	return domain.PackedCiphertext{
		Nonce:        nonce,
		EphemeralPub: ephPub,
		Ciphertext:   box.Seal(nil, plaintext, &nonce, &peer, &sec),
	}, nil
}

// OpenWith opens p with the recipient's secret. ok is false on any
// authentication failure.
func OpenWith(p domain.PackedCiphertext, recipientSec domain.X25519Private) ([]byte, bool) {
	eph := [32]byte(p.EphemeralPub)
	sec := [32]byte(recipientSec)
	defer memzero.Zero(sec[:])
	return box.Open(nil, p.Ciphertext, &p.Nonce, &eph, &sec)
}

// OpenString is OpenWith for UTF-8 text payloads.
func OpenString(p domain.PackedCiphertext, recipientSec domain.X25519Private) (string, bool) {
	msg, ok := OpenWith(p, recipientSec)
	if !ok || !utf8.Valid(msg) {
		return "", false
	}
	return string(msg), true
}
