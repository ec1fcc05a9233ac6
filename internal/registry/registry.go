package registry

import (
	"context"

	"hubrr/internal/directory"
)

// Registry persists the latest bundle per owner.
type Registry interface {
	Put(ctx context.Context, owner string, b directory.BundleDTO) error
	// Get returns ok == false when owner never published.
	Get(ctx context.Context, owner string) (b directory.BundleDTO, ok bool, err error)
}
