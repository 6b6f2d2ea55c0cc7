// Package daemon coordinates the long-running lifelensd process.
//
// It wires configuration, the record store, the diagnosis client, speech and
// the session machine into a single lifecycle with flock-based locking to
// prevent multiple instances, and serves the HTTP API until the context ends.
//
// Keep orchestration logic here: session behaviour lives in the session
// package while the daemon focuses on startup, shutdown, and status.
package daemon
