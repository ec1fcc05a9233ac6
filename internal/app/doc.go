// Package app wires application dependencies for the CLI.
//
// It resolves Config from flags, environment and an optional .env file,
// then builds the key store, directory client and high-level services,
// exposing them via the Wire struct for commands to use.
package app
