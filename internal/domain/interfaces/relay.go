package interfaces

import (
	"context"

	domaintypes "hubrr/internal/domain/types"
)

// BundlePublisher uploads our public bundle to the directory.
type BundlePublisher interface {
	Publish(ctx context.Context, bundle domaintypes.PublicKeyBundle) error
}

// BundleFetcher retrieves a peer's published bundle. It fails with
// ErrNotFound when the peer never published.
type BundleFetcher interface {
	Fetch(ctx context.Context, peer domaintypes.PeerID) (domaintypes.PublicKeyBundle, error)
}

// DirectoryClient is how we talk to the directory service.
type DirectoryClient interface {
	BundlePublisher
	BundleFetcher
}

// Transport delivers opaque envelopes between parties. Implementations are
// explicit connection objects owned by the caller.
type Transport interface {
	Send(ctx context.Context, envelope domaintypes.Envelope) error
	Receive(ctx context.Context) (domaintypes.Envelope, error)
	Close() error
}
