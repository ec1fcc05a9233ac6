// Package message seals plaintext for a peer and opens ciphertext addressed
// to this device.
//
// Every message is a single Curve25519-XSalsa20-Poly1305 box between a fresh
// ephemeral key and the recipient's signed pre-key. There is no session
// state and no forward secrecy: whoever holds a device's signed pre-key
// secret can open every message ever sent to it.
//
// Decrypt never fails with an error. Most blobs a device sees are not
// addressed to it, so "cannot open" is reported as ok == false.
package message
