// Package records persists the meal history, the daily calorie goal and the
// running usage metrics.
//
// Three logical collections (meals, daily_goal, metrics) live in a key-value
// Backend. The sqlite engine is the default; the json engine keeps everything
// in one document rewritten atomically. Writes are read-modify-write and are
// serialized through a file lock so the CLI and lifelensd can share one data
// directory. Reads never fail on bad data: a missing or corrupt value falls
// back to its default and is logged.
package records
