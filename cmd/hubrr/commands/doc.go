// Package commands defines the hubrr CLI and wires dependencies for subcommands.
//
// Commands
//
//   - init           Create local keys (once) and publish the public bundle
//   - fingerprint    Print the identity fingerprint
//   - bundle         Print the local public bundle
//   - fetch          Fetch and check a peer's bundle
//   - encrypt        Seal a message for a peer and print the blob
//   - decrypt        Open a blob addressed to this device
//   - send           Encrypt and deliver a message over the relay
//   - listen         Receive and decrypt relayed messages
//
// # Implementation
//
// The root command resolves configuration (flags, then HUBRR_* environment,
// then .env) and builds the dependency graph (key store, directory client,
// services) before any subcommand runs.
package commands
