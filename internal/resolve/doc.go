// Package resolve turns a library item's native guid into canonical
// identifiers: a TMDb id for movies, a TVDb id for shows.
//
// Resolution is cache first. On a miss, an expired record, or a record that
// lacks the canonical id, the guid is parsed and a fixed sequence of
// conversion attempts fills in missing ids. Each attempt may fail; failures
// are logged at debug level and the sequence continues. Only the final
// sufficiency check can fail a resolution, and its error explains which ids
// were found and what was missing.
//
// Show libraries have one cross-kind rule: anime known by an AniDB or MAL id
// plus a TMDb id, but no TVDb id, resolves in the movie id space.
package resolve
