package domain

import (
	interfaces "hubrr/internal/domain/interfaces"
	types "hubrr/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	DeviceID         = types.DeviceID
	PeerID           = types.PeerID
	Fingerprint      = types.Fingerprint
	X25519Public     = types.X25519Public
	X25519Private    = types.X25519Private
	Ed25519Public    = types.Ed25519Public
	Ed25519Private   = types.Ed25519Private
	IdentityKeyPair  = types.IdentityKeyPair
	SignedPreKey     = types.SignedPreKey
	KeyPair          = types.KeyPair
	LocalKeys        = types.LocalKeys
	PublicKeyBundle  = types.PublicKeyBundle
	PackedCiphertext = types.PackedCiphertext
	Envelope         = types.Envelope
	DecryptedMessage = types.DecryptedMessage
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	KeyStore        = interfaces.KeyStore
	BundlePublisher = interfaces.BundlePublisher
	BundleFetcher   = interfaces.BundleFetcher
	DirectoryClient = interfaces.DirectoryClient
	Transport       = interfaces.Transport
	KeyService      = interfaces.KeyService
	MessageService  = interfaces.MessageService
)

// Size constants re-exported for callers that only import domain.
const (
	NonceSize              = types.NonceSize
	PackedHeaderSize       = types.PackedHeaderSize
	SignatureSize          = types.SignatureSize
	OneTimePreKeyBatchSize = types.OneTimePreKeyBatchSize
)

// DecodePackedCiphertext reverses PackedCiphertext.Encode; ok is false for
// anything that is not base64 or is shorter than the fixed header.
func DecodePackedCiphertext(s string) (PackedCiphertext, bool) {
	return types.DecodePackedCiphertext(s)
}
