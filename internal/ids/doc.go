// Package ids defines the identifier model shared by the parser, cache,
// resolver and mapper.
//
// A Set bundles every identifier known for one library item. TMDB and IMDB
// ids use the ID sum type because multi-part movies carry parallel lists of
// both; every other scheme is always a single value. Sufficient encodes the
// minimum id each library kind needs before an item counts as resolved.
package ids
