package interfaces

import "context"

// KeyStore is durable, device-scoped storage of key material by logical
// name. Writes to the same name are serialized.
type KeyStore interface {
	// Get returns the value stored under name. A missing name is
	// (nil, false, nil).
	Get(ctx context.Context, name string) ([]byte, bool, error)
	// Put stores value under name, replacing any previous value.
	Put(ctx context.Context, name string, value []byte) error
	// PutIfAbsent stores value only if name is unset and returns whatever
	// is stored afterwards, so every caller observes the first writer's
	// value.
	PutIfAbsent(ctx context.Context, name string, value []byte) ([]byte, error)
}
