package directory

import (
	"fmt"

	"hubrr/internal/crypto"
	"hubrr/internal/domain"
	domaintypes "hubrr/internal/domain/types"
)

// BundleDTO is the wire form of a public key bundle.
type BundleDTO struct {
	DeviceID        string   `json:"device_id,omitempty"`
	IdentityPub     string   `json:"identity_pub"`
	SignedPreKeyPub string   `json:"signed_prekey_pub"`
	SignedPreKeySig string   `json:"signed_prekey_sig"`
	OneTimePreKeys  []string `json:"one_time_prekeys"`
}

// FromBundle encodes b for the wire.
func FromBundle(b domain.PublicKeyBundle) BundleDTO {
	otks := make([]string, len(b.OneTimePreKeys))
	for i := range b.OneTimePreKeys {
		otks[i] = crypto.B64(b.OneTimePreKeys[i].Slice())
	}
	return BundleDTO{
		DeviceID:        b.DeviceID.String(),
		IdentityPub:     crypto.B64(b.IdentityPub.Slice()),
		SignedPreKeyPub: crypto.B64(b.SignedPreKeyPub.Slice()),
		SignedPreKeySig: crypto.B64(b.SignedPreKeySig),
		OneTimePreKeys:  otks,
	}
}

// Bundle decodes d and checks key lengths. It does not verify the
// signature. Errors wrap domain.ErrInvalidBundle.
func (d BundleDTO) Bundle() (domain.PublicKeyBundle, error) {
	var out domain.PublicKeyBundle
	out.DeviceID = domain.DeviceID(d.DeviceID)

	raw, err := unb64("identity_pub", d.IdentityPub)
	if err != nil {
		return out, err
	}
	if out.IdentityPub, err = domaintypes.ParseEd25519Public(raw); err != nil {
		return out, fmt.Errorf("%w: %v", domain.ErrInvalidBundle, err)
	}

	if raw, err = unb64("signed_prekey_pub", d.SignedPreKeyPub); err != nil {
		return out, err
	}
	if out.SignedPreKeyPub, err = domaintypes.ParseX25519Public(raw); err != nil {
		return out, fmt.Errorf("%w: %v", domain.ErrInvalidBundle, err)
	}

	if out.SignedPreKeySig, err = unb64("signed_prekey_sig", d.SignedPreKeySig); err != nil {
		return out, err
	}

	out.OneTimePreKeys = make([]domain.X25519Public, 0, len(d.OneTimePreKeys))
	for i, s := range d.OneTimePreKeys {
		raw, err := unb64(fmt.Sprintf("one_time_prekeys[%d]", i), s)
		if err != nil {
			return out, err
		}
		pub, err := domaintypes.ParseX25519Public(raw)
		if err != nil {
			return out, fmt.Errorf("%w: one_time_prekeys[%d]: %v", domain.ErrInvalidBundle, i, err)
		}
		out.OneTimePreKeys = append(out.OneTimePreKeys, pub)
	}

	return out, out.ValidateKeys()
}

func unb64(field, s string) ([]byte, error) {
	b, err := crypto.FromB64(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidBundle, field, err)
	}
	return b, nil
}
