package types

import "encoding/base64"

const (
	// NonceSize is the size of the box nonce at the head of a packed blob.
	NonceSize = 24
	// PackedHeaderSize is nonce + ephemeral public key.
	PackedHeaderSize = NonceSize + X25519KeySize
)

// PackedCiphertext is one sealed message: nonce || ephemeral_pub || ciphertext.
// Anyone holding the recipient's signed pre-key secret can open it.
type PackedCiphertext struct {
	Nonce        [NonceSize]byte
	EphemeralPub X25519Public
	Ciphertext   []byte
}

// Bytes packs the three parts into one buffer of exactly
// PackedHeaderSize+len(Ciphertext) bytes.
func (p PackedCiphertext) Bytes() []byte {
	out := make([]byte, 0, PackedHeaderSize+len(p.Ciphertext))
	out = append(out, p.Nonce[:]...)
	out = append(out, p.EphemeralPub[:]...)
	out = append(out, p.Ciphertext...)
	return out
}

// Encode returns the transport encoding (standard base64) of the packed blob.
func (p PackedCiphertext) Encode() string {
	return base64.StdEncoding.EncodeToString(p.Bytes())
}

// UnpackCiphertext splits b. Buffers shorter than the fixed header are
// malformed and yield ok == false.
func UnpackCiphertext(b []byte) (p PackedCiphertext, ok bool) {
	if len(b) < PackedHeaderSize {
		return PackedCiphertext{}, false
	}
	copy(p.Nonce[:], b[:NonceSize])
	copy(p.EphemeralPub[:], b[NonceSize:PackedHeaderSize])
	p.Ciphertext = append([]byte(nil), b[PackedHeaderSize:]...)
	return p, true
}

// DecodePackedCiphertext reverses Encode.
func DecodePackedCiphertext(s string) (PackedCiphertext, bool) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return PackedCiphertext{}, false
	}
	return UnpackCiphertext(raw)
}
