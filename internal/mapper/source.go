package mapper

import (
	"context"

	"plexmeta/internal/ids"
)

// Library names a media server library and the kind of items it holds.
type Library struct {
	Name string
	Kind ids.Kind
}

// Item is one library entry as the media server reports it.
type Item struct {
	// Handle is the server key the mapping points back to.
	Handle string
	Title  string
	// GUID is the native agent identifier, e.g. com.plexapp.agents.imdb://tt0111161.
	GUID string
	// Alternates lists per-provider ids (tmdb://603) reported by the native
	// multi-source agent.
	Alternates []string
}

// Source enumerates the items of a library.
type Source interface {
	Items(ctx context.Context, library Library) ([]Item, error)
}
