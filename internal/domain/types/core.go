package types

// DeviceID identifies one installation. It is generated locally and never
// rotated.
type DeviceID string

// String returns the string form of the device id.
func (id DeviceID) String() string { return string(id) }

// PeerID is the identifier a peer's bundle is published under at the
// directory (a username or a device id).
type PeerID string

// String returns the string form of the peer identifier.
func (id PeerID) String() string { return string(id) }

// Fingerprint is a short identifier for public keys presented to users.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }
