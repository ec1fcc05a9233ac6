// Package directory provides the HTTP client for the key directory service
// and the JSON shapes shared with the server in internal/server.
//
// The directory stores public key bundles and serves them to peers:
//   - POST {base}/keys/upload publishes our bundle.
//   - GET {base}/keys/for/{peer} fetches a peer's bundle.
//
// Byte strings travel as standard base64. Every request carries
// "Content-Type: application/json" and, when a token is configured,
// "Authorization: Bearer <token>". Requests accept a context for
// cancellation and deadlines. Non-2xx statuses are returned as errors naming
// the method, path and status; Publish failures wrap domain.ErrPublish and
// Fetch failures wrap domain.ErrNotFound.
package directory
