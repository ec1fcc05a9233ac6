// Package registry stores published key bundles on the directory side.
//
// Bundles are kept in wire form (directory.BundleDTO) under an owner
// string: the authenticated subject when the server runs with JWT auth,
// otherwise the bundle's device id. A later upload by the same owner
// replaces the previous bundle.
//
// Backends:
//   - Memory: a map, for tests and single-process dev servers
//   - Redis: one JSON value per owner under "bundle:{owner}"
//   - Postgres: a key_bundles table upserted per owner
package registry
