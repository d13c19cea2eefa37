package convert

import (
	"context"
	"fmt"

	"plexmeta/internal/services"
)

// TMDBConverter is the conversion surface of a TMDb-like provider.
type TMDBConverter interface {
	IMDBToTMDB(ctx context.Context, imdbID string) (int64, error)
	TVDBToTMDB(ctx context.Context, tvdbID int64) (int64, error)
	TMDBToIMDB(ctx context.Context, tmdbID int64) (string, error)
	TMDBToTVDB(ctx context.Context, tmdbID int64) (int64, error)
}

// TraktConverter is the conversion surface of a Trakt-like provider.
type TraktConverter interface {
	TMDBConverter
	IMDBToTVDB(ctx context.Context, imdbID string) (int64, error)
}

// AniDBConverter maps AniDB ids onto TVDb and IMDb.
type AniDBConverter interface {
	AniDBToTVDB(ctx context.Context, anidbID string) (int64, error)
	AniDBToIMDB(ctx context.Context, anidbID string) (string, error)
}

// MALIDs is the id bundle a MyAnimeList id list associates with one entry.
// Zero means the list has no mapping for that scheme.
type MALIDs struct {
	TVDB int64
	TMDB int64
}

// MALConverter maps MyAnimeList ids onto TVDb and TMDb.
type MALConverter interface {
	Lookup(ctx context.Context, malID string) (MALIDs, error)
	MALToTVDB(ctx context.Context, malID string) (int64, error)
	MALToTMDB(ctx context.Context, malID string) (int64, error)
}

// Registry gives capability-typed access to the configured providers. Any
// field may be nil. The registry borrows the providers; callers own their
// lifetime.
type Registry struct {
	TMDB  TMDBConverter
	Trakt TraktConverter
	AniDB AniDBConverter
	MAL   MALConverter
}

// ProviderLabel names the general-purpose providers configured, for
// user-facing diagnostics.
func (r Registry) ProviderLabel() string {
	switch {
	case r.TMDB != nil && r.Trakt != nil:
		return "TMDb or Trakt"
	case r.TMDB != nil:
		return "TMDb"
	case r.Trakt != nil:
		return "Trakt"
	default:
		return ""
	}
}

// Unavailable returns the error reported when a needed provider is missing.
func Unavailable(provider, operation string) error {
	return services.Wrap(services.ErrConversionUnavailable, provider, operation, "provider not configured", nil)
}

// NotFound returns the error providers report when a lookup has no mapping.
func NotFound(provider, operation string, input any) error {
	return services.Wrap(services.ErrConversionNotFound, provider, operation, fmt.Sprintf("no mapping for %v", input), nil)
}
