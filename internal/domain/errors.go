package domain

import types "hubrr/internal/domain/types"

// Sentinel errors, re-exported so callers can errors.Is against domain.*.
var (
	ErrStorage            = types.ErrStorage
	ErrNotFound           = types.ErrNotFound
	ErrPeerKeyUnavailable = types.ErrPeerKeyUnavailable
	ErrInvalidBundle      = types.ErrInvalidBundle
	ErrPublish            = types.ErrPublish
	ErrUnauthorized       = types.ErrUnauthorized
	ErrRateLimited        = types.ErrRateLimited
)
