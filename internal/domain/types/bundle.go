package types

import "fmt"

// PublicKeyBundle is the only key material that ever leaves the device.
// It is derived from the persisted keys each time it is published.
type PublicKeyBundle struct {
	DeviceID        DeviceID
	IdentityPub     Ed25519Public
	SignedPreKeyPub X25519Public
	SignedPreKeySig []byte
	OneTimePreKeys  []X25519Public
}

// Validate reports whether all four fixed fields are present, as required
// before publication.
func (b PublicKeyBundle) Validate() error {
	if b.DeviceID == "" {
		return fmt.Errorf("%w: missing device_id", ErrInvalidBundle)
	}
	return b.ValidateKeys()
}

// ValidateKeys checks the key fields only. Fetched bundles are not required
// to echo the owner's device id.
func (b PublicKeyBundle) ValidateKeys() error {
	switch {
	case b.IdentityPub.IsZero():
		return fmt.Errorf("%w: missing identity_pub", ErrInvalidBundle)
	case b.SignedPreKeyPub.IsZero():
		return fmt.Errorf("%w: missing signed_prekey_pub", ErrInvalidBundle)
	case len(b.SignedPreKeySig) != SignatureSize:
		return fmt.Errorf("%w: signed_prekey_sig must be %d bytes, got %d",
			ErrInvalidBundle, SignatureSize, len(b.SignedPreKeySig))
	}
	return nil
}
