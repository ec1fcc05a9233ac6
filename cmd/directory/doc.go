// Package main runs the hubrr key directory and ciphertext relay.
//
// HTTP API
//
//	POST /keys/upload
//	    Store the caller's public bundle {device_id, identity_pub,
//	    signed_prekey_pub, signed_prekey_sig, one_time_prekeys}. The signed
//	    prekey signature must verify against identity_pub.
//
//	GET /keys/for/{peer}
//	    Return the latest bundle published by {peer}; 404 when absent.
//
//	GET /ws
//	    Websocket relay. Envelopes {to, payload} are delivered to every
//	    connection of {to}; the server stamps from and timestamp.
//
//	GET /healthz, GET /metrics
//
// Behaviour
//
//   - Bundles are kept in memory, Redis or Postgres (DIRECTORY_BACKEND).
//   - With JWT_SECRET set, upload and relay require a bearer token and
//     bundles are published under the token subject; "directory token
//     <subject>" mints one for development.
//   - Relay envelopes are not queued: a recipient that is offline misses them.
//   - The default listen address is :8080.
//
// The directory never sees plaintext or private keys; it only stores public
// bundles and forwards ciphertext.
package main
