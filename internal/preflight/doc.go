// Package preflight provides readiness checks for the diagnosis model, the
// data directories and the speech commands LifeLens depends on.
//
// The CLI "lifelens config check" command runs RunAll and renders the
// results; the daemon logs failed checks at startup without refusing to run.
//
// Each check is gated by its config toggle -- disabled features are skipped.
package preflight
