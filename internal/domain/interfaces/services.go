package interfaces

import (
	"context"

	domaintypes "hubrr/internal/domain/types"
)

// KeyService creates local key material on first use and publishes the
// public bundle.
type KeyService interface {
	EnsureKeys(ctx context.Context) (domaintypes.LocalKeys, error)
	LocalBundle(ctx context.Context) (domaintypes.PublicKeyBundle, error)
	Fingerprint(ctx context.Context) (domaintypes.Fingerprint, error)
	Ready(ctx context.Context) (bool, error)
}

// MessageService seals messages for peers and opens messages addressed to
// this device.
type MessageService interface {
	Encrypt(ctx context.Context, peer domaintypes.PeerID, plaintext string) (string, error)
	// Decrypt reports ok == false for anything that cannot be opened
	// locally. It never fails with an error.
	Decrypt(ctx context.Context, packed string) (plaintext string, ok bool)
}
