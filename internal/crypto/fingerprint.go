package crypto

import (
	"crypto/sha256"
	"encoding/hex"

	"hubrr/internal/domain"
)

// fingerprintLen is the number of digest bytes kept (20 hex characters).
const fingerprintLen = 10

// Fingerprint identifies a public identity key for humans and logs: the
// first 10 bytes of its SHA-256 digest, hex encoded.
func Fingerprint(pub domain.Ed25519Public) domain.Fingerprint {
	sum := sha256.Sum256(pub.Slice())
	return domain.Fingerprint(hex.EncodeToString(sum[:fingerprintLen]))
}
