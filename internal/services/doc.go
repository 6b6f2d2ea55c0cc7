// Package services defines shared utilities consumed by the session state
// machine and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp the session generation, phase, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that tag failures for
//     classification, and UserMessage which decides what an end user may see.
//
// Provider failures stay in logs. Only errors built with Validation carry
// text that reaches the user unchanged.
package services
