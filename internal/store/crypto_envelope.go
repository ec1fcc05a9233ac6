package store

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"hubrr/internal/util/memzero"
)

const sealedVersion = 2

// ErrWrongPassphrase is returned when the passphrase is incorrect or the
// sealed keystore has been modified.
var ErrWrongPassphrase = errors.New("wrong passphrase or corrupted keystore")

// kdfParams are the scrypt cost parameters recorded next to the ciphertext.
type kdfParams struct {
	N int `json:"n"`
	R int `json:"r"`
	P int `json:"p"`
}

var defaultKDF = kdfParams{N: 1 << 15, R: 8, P: 1}

// sealedFile is the on-disk form of a passphrase-protected keystore.
type sealedFile struct {
	V      int       `json:"v"`
	KDF    kdfParams `json:"kdf"`
	Salt   []byte    `json:"salt"`
	Nonce  []byte    `json:"nonce"`
	Cipher []byte    `json:"cipher"`
}

// sealer encrypts the keystore under a passphrase-derived key. The key is
// derived once per salt and reused; every write draws a fresh nonce.
// Not safe for concurrent use; FileStore serializes access.
type sealer struct {
	passphrase []byte
	kdf        kdfParams

	salt []byte
	key  []byte
}

func newSealer(passphrase string, kdf kdfParams) *sealer {
	return &sealer{passphrase: []byte(passphrase), kdf: kdf}
}

// keyFor returns the AEAD key for salt and params, deriving it on a cache miss.
func (s *sealer) keyFor(salt []byte, kdf kdfParams) ([]byte, error) {
	if s.key != nil && kdf == s.kdf && bytes.Equal(salt, s.salt) {
		return s.key, nil
	}
	key, err := scrypt.Key(s.passphrase, salt, kdf.N, kdf.R, kdf.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	memzero.Zero(s.key)
	s.key, s.salt, s.kdf = key, append([]byte(nil), salt...), kdf
	return key, nil
}

func (s *sealer) seal(raw []byte) ([]byte, error) {
	salt := s.salt
	if salt == nil {
		salt = make([]byte, 16)
		if _, err := rand.Read(salt); err != nil {
			return nil, err
		}
	}
	key, err := s.keyFor(salt, s.kdf)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return json.Marshal(sealedFile{
		V:      sealedVersion,
		KDF:    s.kdf,
		Salt:   salt,
		Nonce:  nonce,
		Cipher: aead.Seal(nil, nonce, raw, salt),
	})
}

func (s *sealer) unseal(b []byte) ([]byte, error) {
	var f sealedFile
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("sealed keystore: %w", err)
	}
	if f.V != sealedVersion {
		return nil, fmt.Errorf("unsupported keystore version %d", f.V)
	}
	key, err := s.keyFor(f.Salt, f.KDF)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	if len(f.Nonce) != aead.NonceSize() {
		return nil, ErrWrongPassphrase
	}
	pt, err := aead.Open(nil, f.Nonce, f.Cipher, f.Salt)
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return pt, nil
}
