// Package domain holds the hubrr key and message model shared by every
// layer: fixed-size key types, the public bundle, packed ciphertexts, relay
// envelopes, the sentinel errors and the store, directory, transport and
// service contracts.
//
// The definitions live in the types and interfaces subpackages and are
// re-exported here as aliases, so most code imports only domain.
package domain
