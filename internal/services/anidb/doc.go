// Package anidb resolves AniDB ids to TVDb and IMDb ids from the anime-lists
// XML mapping.
package anidb
