package types

import "errors"

var (
	// ErrStorage wraps a key store read/write failure.
	ErrStorage = errors.New("key storage failure")
	// ErrNotFound is returned when the directory has no bundle for a peer.
	ErrNotFound = errors.New("not found")
	// ErrPeerKeyUnavailable is returned by encryption when the peer has not
	// published a bundle.
	ErrPeerKeyUnavailable = errors.New("peer key unavailable")
	// ErrInvalidBundle marks a structurally incomplete or badly signed bundle.
	ErrInvalidBundle = errors.New("invalid key bundle")
	// ErrPublish wraps a failed bundle upload.
	ErrPublish = errors.New("publish bundle failed")
	// ErrUnauthorized is returned when the directory rejects our credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRateLimited is returned when the directory throttles us.
	ErrRateLimited = errors.New("rate limited")
)
