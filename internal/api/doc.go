// Package api defines the wire-format types and the HTTP handlers that expose
// a LifeLens session to remote clients.
//
// # Key Types
//
// SessionState: transport view of session.Snapshot with the diagnosis passed
// through as raw JSON carrying its is_food discriminator.
//
// DemoState, TodayResponse, MetricsResponse, MealListResponse: payloads for
// the demo, tracker and dashboard views.
//
// # Handler
//
// NewHandler wires the session machine, demo sequencer and record store into
// an http.Handler. Validation failures map to 400, demo lockout and illegal
// transitions to 409, everything else to 500 with a generic message. All
// error bodies are {"error": "..."}.
//
// # Design Notes
//
// DTOs use camelCase JSON tags for JavaScript/TypeScript consumers. Meal
// records and the diagnosis keep their storage field names so exports and
// API payloads stay interchangeable.
package api
