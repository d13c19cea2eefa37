// Package services defines shared utilities consumed by the resolver, the
// mapper and the external provider clients.
//
// Key responsibilities:
//   - Context helpers that stamp library names, item handles, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so parse, conversion and
//     resolution failures can be classified with errors.Is.
//
// Provider clients live in subpackages (tmdb, trakt, anidb, mal, plex) and
// report misses with ErrConversionNotFound so the fallback chain can absorb
// them uniformly.
package services
