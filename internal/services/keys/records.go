package keys

import (
	"encoding/json"
	"fmt"

	"hubrr/internal/domain"
)

// On-disk shapes. []byte fields marshal as base64.

type identityRecord struct {
	Pub []byte `json:"pub"`
	Sec []byte `json:"sec"`
}

type signedPreKeyRecord struct {
	Pub []byte `json:"pub"`
	Sig []byte `json:"sig"`
	Sec []byte `json:"sec"`
}

func decodeIdentity(b []byte) (domain.IdentityKeyPair, error) {
	var rec identityRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return domain.IdentityKeyPair{}, err
	}
	var out domain.IdentityKeyPair
	if len(rec.Pub) != len(out.Pub) || len(rec.Sec) != len(out.Sec) {
		return domain.IdentityKeyPair{}, fmt.Errorf("identity: bad key sizes %d/%d", len(rec.Pub), len(rec.Sec))
	}
	copy(out.Pub[:], rec.Pub)
	copy(out.Sec[:], rec.Sec)
	return out, nil
}

func encodeIdentity(id domain.IdentityKeyPair) ([]byte, error) {
	return json.Marshal(identityRecord{Pub: id.Pub.Slice(), Sec: id.Sec.Slice()})
}

func decodeSignedPreKey(b []byte) (domain.SignedPreKey, error) {
	var rec signedPreKeyRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return domain.SignedPreKey{}, err
	}
	var out domain.SignedPreKey
	if len(rec.Pub) != len(out.Pub) || len(rec.Sec) != len(out.Sec) || len(rec.Sig) != domain.SignatureSize {
		return domain.SignedPreKey{}, fmt.Errorf("signed prekey: bad sizes %d/%d/%d", len(rec.Pub), len(rec.Sec), len(rec.Sig))
	}
	copy(out.Pub[:], rec.Pub)
	copy(out.Sec[:], rec.Sec)
	out.Sig = append([]byte(nil), rec.Sig...)
	return out, nil
}

func encodeSignedPreKey(spk domain.SignedPreKey) ([]byte, error) {
	return json.Marshal(signedPreKeyRecord{Pub: spk.Pub.Slice(), Sig: spk.Sig, Sec: spk.Sec.Slice()})
}

func decodeOneTime(b []byte) ([]domain.X25519Public, error) {
	var raw [][]byte
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	out := make([]domain.X25519Public, len(raw))
	for i, r := range raw {
		if len(r) != len(out[i]) {
			return nil, fmt.Errorf("one-time prekey %d: want %d bytes, got %d", i, len(out[i]), len(r))
		}
		copy(out[i][:], r)
	}
	return out, nil
}

func encodeOneTime(pubs []domain.X25519Public) ([]byte, error) {
	raw := make([][]byte, len(pubs))
	for i := range pubs {
		raw[i] = pubs[i].Slice()
	}
	return json.Marshal(raw)
}
