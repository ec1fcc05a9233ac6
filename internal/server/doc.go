// Package server implements the key directory service and the ciphertext
// relay used by hubrr devices.
//
// HTTP surface (gin):
//   - POST /keys/upload: store the caller's public bundle after checking its
//     structure and signed pre-key signature
//   - GET /keys/for/:peer: return a published bundle, 404 when absent
//   - GET /ws: websocket relay routing envelopes by recipient
//   - GET /healthz and GET /metrics (Prometheus)
//
// Every request gets a request id, an access log line and a per-IP token
// bucket. When a JWT secret is configured, uploads and relay connections
// require a bearer token and bundles are stored under the token subject.
//
// The server never sees private keys or plaintext.
package server
