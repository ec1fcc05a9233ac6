package types

// OneTimePreKeyBatchSize is the number of one-time pre-keys generated on
// first run. The batch is never replenished.
const OneTimePreKeyBatchSize = 10

// SignedPreKey is a Diffie-Hellman pair whose public half is signed by the
// identity key. Sec stays local.
type SignedPreKey struct {
	Pub X25519Public
	Sec X25519Private
	Sig []byte
}

// KeyPair is a bare X25519 pair (ephemeral and one-time keys).
type KeyPair struct {
	Pub X25519Public
	Sec X25519Private
}
