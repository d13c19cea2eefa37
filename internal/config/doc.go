// Package config loads, normalizes, and validates plexmeta configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TMDB_API_KEY, TRAKT_CLIENT_ID and PLEX_TOKEN. The Config type centralizes
// every knob the CLI needs, so cache location, provider credentials and
// mapping concurrency are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
