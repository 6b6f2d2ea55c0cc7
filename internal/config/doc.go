// Package config loads, normalizes, and validates LifeLens configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// LIFELENS_API_KEY, including values kept in a local .env file. The Config
// type centralizes every knob the CLI and lifelensd need so the data
// directory, model settings, and speech commands are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
