// Package plex reads library sections and items from a Plex Media Server.
//
// Client implements mapper.Source: it resolves configured library names to
// sections (exact title first, fuzzy match as a fallback) and lists each
// item's native guid together with the alternate provider ids the modern
// Plex agent reports. Authentication uses a static X-Plex-Token.
package plex
