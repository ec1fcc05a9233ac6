package types

// Envelope is what the transport carries between parties. Payload is an
// encoded PackedCiphertext; the relay never sees anything else.
type Envelope struct {
	From      PeerID `json:"from"`
	To        PeerID `json:"to"`
	Payload   string `json:"payload"`
	Timestamp int64  `json:"timestamp"`
}

// DecryptedMessage is an envelope that could be opened locally.
type DecryptedMessage struct {
	From      PeerID `json:"from"`
	Plaintext string `json:"plaintext"`
	Timestamp int64  `json:"timestamp"`
}
