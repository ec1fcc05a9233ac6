// Package keys creates the device's key material on first use and keeps the
// directory's copy of its public bundle current.
//
// EnsureKeys is idempotent: every piece of state (device id, identity pair,
// signed pre-key, one-time pre-key batch) is created at most once per store
// and then reused. Concurrent callers in one process share a single run;
// callers in different processes converge through KeyStore.PutIfAbsent.
//
// One-time pre-keys are generated and published for directory
// compatibility only. Their secrets are discarded and nothing consumes them.
package keys
