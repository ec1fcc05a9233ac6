// Package store provides persistence for the device's key material.
//
// Every backend implements domain.KeyStore: opaque byte values under stable
// logical names (device_id, identity_keypair, signed_prekey,
// one_time_prekeys, ready). All methods are concurrency-safe and writes to
// one name are serialized.
//
// The package includes:
//   - FileStore: a single JSON map on disk, optionally sealed with a
//     passphrase (scrypt + XChaCha20-Poly1305)
//   - SQLiteStore: a key/value table in a SQLite database
//   - MemoryStore: an in-process map, for tests and throwaway devices
//
// Write failures are reported wrapped in domain.ErrStorage.
package store

// Stable key names.
const (
	KeyDeviceID       = "device_id"
	KeyIdentity       = "identity_keypair"
	KeySignedPreKey   = "signed_prekey"
	KeyOneTimePreKeys = "one_time_prekeys"
	KeyReady          = "ready"
)
