// Package idcache persists resolved identity sets in SQLite.
//
// Records are keyed by library kind and native guid and carry the time they
// were last written. Expiry is decided when a record is read, so changing the
// configured TTL takes effect immediately. Operations on the same key are
// serialized through a per-key mutex; different keys never contend.
package idcache
