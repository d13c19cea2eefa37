// Package mal resolves MyAnimeList ids to TVDb and TMDb ids from a published
// anime id list.
package mal
