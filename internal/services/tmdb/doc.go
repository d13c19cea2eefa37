// Package tmdb implements the TMDb id converter on top of the /find and
// /external_ids endpoints.
//
// Lookups without a mapping fail with services.ErrConversionNotFound so the
// resolver can move on to the next provider; transport problems are tagged
// services.ErrTransient. Requests share one token-bucket limiter per client.
package tmdb
