package types

// IdentityKeyPair is the long-term Ed25519 signing pair of a device.
// Sec never leaves the device.
type IdentityKeyPair struct {
	Pub Ed25519Public
	Sec Ed25519Private
}

// LocalKeys is what EnsureKeys hands back for local use.
type LocalKeys struct {
	DeviceID        DeviceID
	IdentityPub     Ed25519Public
	SignedPreKeySec X25519Private

	// Bundle is the public bundle that was (re)published.
	Bundle PublicKeyBundle
}
