// Package mapper builds the canonical-id index of a media library.
//
// A Mapper enumerates a library through a Source, resolves each item once,
// and collects TMDb ids of movies and TVDb ids of shows into maps pointing
// back at item handles. Resolutions run on a bounded errgroup; one worker
// keeps the library order. Items that cannot be resolved are reported in
// Mapping.Failures and never stop the run.
package mapper
