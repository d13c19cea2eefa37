// Package trakt implements the Trakt id converter using the /search/{source}/{id}
// lookup endpoint.
package trakt
