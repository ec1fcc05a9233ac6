// Package crypto exposes the minimal primitives used by hubrr.
//
// Contents
//
//   - X25519 key generation (GenerateX25519)
//   - Ed25519 key generation, signing and verification (GenerateEd25519,
//     SignEd25519, VerifyEd25519, VerifySignedPreKey)
//   - Curve25519-XSalsa20-Poly1305 sealing of packed messages (SealFor,
//     OpenWith)
//   - Short public-key fingerprints for display/logging (Fingerprint)
//
// # Notes
//
// All functions return fixed-size array types defined in internal/domain to
// avoid accidental reallocations. Callers should treat returned secrets as
// sensitive and wipe them with memzero.Zero when practical.
package crypto
