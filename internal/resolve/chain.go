package resolve

import (
	"context"
	"fmt"

	"plexmeta/internal/convert"
	"plexmeta/internal/ids"
	"plexmeta/internal/services"
)

// step is one conversion attempt of the fallback chain. applies looks only at
// the working set; provider availability is checked by run.
type step struct {
	name    string
	applies func(ids.Set) bool
	run     func(context.Context, *ids.Set) error
}

// steps returns the fallback chain in evaluation order. Where TMDb and Trakt
// can both fill a field, the TMDb attempt comes first.
func (r *Resolver) steps(kind ids.Kind) []step {
	reg := r.registry
	show := kind == ids.KindShow

	return []step{
		{
			name:    "anidb:anidb_to_tvdb",
			applies: func(s ids.Set) bool { return s.AniDB != "" && s.TVDB == 0 },
			run: func(ctx context.Context, s *ids.Set) error {
				if reg.AniDB == nil {
					return convert.Unavailable("anidb", "anidb_to_tvdb")
				}
				id, err := reg.AniDB.AniDBToTVDB(ctx, s.AniDB)
				if err != nil {
					return err
				}
				s.TVDB = id
				return nil
			},
		},
		{
			name:    "anidb:anidb_to_imdb",
			applies: func(s ids.Set) bool { return s.AniDB != "" && s.IMDB.Empty() },
			run: func(ctx context.Context, s *ids.Set) error {
				if reg.AniDB == nil {
					return convert.Unavailable("anidb", "anidb_to_imdb")
				}
				id, err := reg.AniDB.AniDBToIMDB(ctx, s.AniDB)
				if err != nil {
					return err
				}
				s.IMDB = ids.Scalar(id)
				return nil
			},
		},
		{
			name:    "mal:lookup",
			applies: func(s ids.Set) bool { return s.MAL != "" },
			run: func(ctx context.Context, s *ids.Set) error {
				if reg.MAL == nil {
					return convert.Unavailable("mal", "lookup")
				}
				found, err := reg.MAL.Lookup(ctx, s.MAL)
				if err != nil {
					return err
				}
				switch {
				case found.TVDB > 0:
					s.TVDB = found.TVDB
				case found.TMDB > 0:
					s.TMDB = ids.Scalar(found.TMDB)
				default:
					return services.Wrap(services.ErrConversionNotFound, "mal", "lookup",
						fmt.Sprintf("MyAnimeList ID: %s has no other IDs associated with it", s.MAL), nil)
				}
				return nil
			},
		},
		{
			name:    "mal:mal_to_tvdb",
			applies: func(s ids.Set) bool { return s.MAL != "" && s.TVDB == 0 },
			run: func(ctx context.Context, s *ids.Set) error {
				if reg.MAL == nil {
					return convert.Unavailable("mal", "mal_to_tvdb")
				}
				id, err := reg.MAL.MALToTVDB(ctx, s.MAL)
				if err != nil {
					return err
				}
				s.TVDB = id
				return nil
			},
		},
		{
			name:    "mal:mal_to_tmdb",
			applies: func(s ids.Set) bool { return s.MAL != "" && s.TMDB.Empty() },
			run: func(ctx context.Context, s *ids.Set) error {
				if reg.MAL == nil {
					return convert.Unavailable("mal", "mal_to_tmdb")
				}
				id, err := reg.MAL.MALToTMDB(ctx, s.MAL)
				if err != nil {
					return err
				}
				s.TMDB = ids.Scalar(id)
				return nil
			},
		},
		{
			name:    "tmdb:imdb_list_to_tmdb",
			applies: func(s ids.Set) bool { return s.TMDB.Empty() && s.IMDB.IsList() && !s.IMDB.Empty() },
			run: func(ctx context.Context, s *ids.Set) error {
				if reg.TMDB == nil {
					return convert.Unavailable("tmdb", "imdb_to_tmdb")
				}
				return convertIMDBList(ctx, s, reg.TMDB.IMDBToTMDB)
			},
		},
		{
			name:    "tmdb:imdb_to_tmdb",
			applies: func(s ids.Set) bool { return s.TMDB.Empty() && !s.IMDB.IsList() && !s.IMDB.Empty() },
			run: func(ctx context.Context, s *ids.Set) error {
				if reg.TMDB == nil {
					return convert.Unavailable("tmdb", "imdb_to_tmdb")
				}
				id, err := reg.TMDB.IMDBToTMDB(ctx, s.IMDB.First())
				if err != nil {
					return err
				}
				s.TMDB = ids.Scalar(id)
				return nil
			},
		},
		{
			name:    "trakt:imdb_to_tmdb",
			applies: func(s ids.Set) bool { return s.TMDB.Empty() && !s.IMDB.Empty() },
			run: func(ctx context.Context, s *ids.Set) error {
				if reg.Trakt == nil {
					return convert.Unavailable("trakt", "imdb_to_tmdb")
				}
				if s.IMDB.IsList() {
					return convertIMDBList(ctx, s, reg.Trakt.IMDBToTMDB)
				}
				id, err := reg.Trakt.IMDBToTMDB(ctx, s.IMDB.First())
				if err != nil {
					return err
				}
				s.TMDB = ids.Scalar(id)
				return nil
			},
		},
		{
			name:    "tmdb:tvdb_to_tmdb",
			applies: func(s ids.Set) bool { return s.TMDB.Empty() && s.TVDB != 0 },
			run: func(ctx context.Context, s *ids.Set) error {
				if reg.TMDB == nil {
					return convert.Unavailable("tmdb", "tvdb_to_tmdb")
				}
				id, err := reg.TMDB.TVDBToTMDB(ctx, s.TVDB)
				if err != nil {
					return err
				}
				s.TMDB = ids.Scalar(id)
				return nil
			},
		},
		{
			name:    "trakt:tvdb_to_tmdb",
			applies: func(s ids.Set) bool { return s.TMDB.Empty() && s.TVDB != 0 },
			run: func(ctx context.Context, s *ids.Set) error {
				if reg.Trakt == nil {
					return convert.Unavailable("trakt", "tvdb_to_tmdb")
				}
				id, err := reg.Trakt.TVDBToTMDB(ctx, s.TVDB)
				if err != nil {
					return err
				}
				s.TMDB = ids.Scalar(id)
				return nil
			},
		},
		{
			name:    "tmdb:tmdb_to_imdb",
			applies: func(s ids.Set) bool { return s.IMDB.Empty() && !s.TMDB.Empty() },
			run: func(ctx context.Context, s *ids.Set) error {
				if reg.TMDB == nil {
					return convert.Unavailable("tmdb", "tmdb_to_imdb")
				}
				return convertTMDBToIMDB(ctx, s, reg.TMDB.TMDBToIMDB)
			},
		},
		{
			name:    "trakt:tmdb_to_imdb",
			applies: func(s ids.Set) bool { return s.IMDB.Empty() && !s.TMDB.Empty() },
			run: func(ctx context.Context, s *ids.Set) error {
				if reg.Trakt == nil {
					return convert.Unavailable("trakt", "tmdb_to_imdb")
				}
				return convertTMDBToIMDB(ctx, s, reg.Trakt.TMDBToIMDB)
			},
		},
		{
			// Gated on TVDb but converts from TMDb, matching the behaviour
			// existing caches were built with.
			name:    "trakt:tvdb_gated_tmdb_to_imdb",
			applies: func(s ids.Set) bool { return s.IMDB.Empty() && s.TVDB != 0 },
			run: func(ctx context.Context, s *ids.Set) error {
				if reg.Trakt == nil {
					return convert.Unavailable("trakt", "tmdb_to_imdb")
				}
				return convertTMDBToIMDB(ctx, s, reg.Trakt.TMDBToIMDB)
			},
		},
		{
			name:    "tmdb:tmdb_to_tvdb",
			applies: func(s ids.Set) bool { return show && s.TVDB == 0 && !s.TMDB.Empty() },
			run: func(ctx context.Context, s *ids.Set) error {
				if reg.TMDB == nil {
					return convert.Unavailable("tmdb", "tmdb_to_tvdb")
				}
				id, err := reg.TMDB.TMDBToTVDB(ctx, s.TMDB.First())
				if err != nil {
					return err
				}
				s.TVDB = id
				return nil
			},
		},
		{
			name:    "trakt:tmdb_to_tvdb",
			applies: func(s ids.Set) bool { return show && s.TVDB == 0 && !s.TMDB.Empty() },
			run: func(ctx context.Context, s *ids.Set) error {
				if reg.Trakt == nil {
					return convert.Unavailable("trakt", "tmdb_to_tvdb")
				}
				id, err := reg.Trakt.TMDBToTVDB(ctx, s.TMDB.First())
				if err != nil {
					return err
				}
				s.TVDB = id
				return nil
			},
		},
		{
			name:    "trakt:imdb_to_tvdb",
			applies: func(s ids.Set) bool { return show && s.TVDB == 0 && !s.IMDB.Empty() },
			run: func(ctx context.Context, s *ids.Set) error {
				if reg.Trakt == nil {
					return convert.Unavailable("trakt", "imdb_to_tvdb")
				}
				id, err := reg.Trakt.IMDBToTVDB(ctx, s.IMDB.First())
				if err != nil {
					return err
				}
				s.TVDB = id
				return nil
			},
		},
	}
}

// convertIMDBList converts an IMDb list element by element. Elements that
// fail are dropped from both lists so the surviving pairs stay aligned. When
// nothing converts both fields end up empty.
func convertIMDBList(ctx context.Context, s *ids.Set, conv func(context.Context, string) (int64, error)) error {
	var (
		tmdbIDs []int64
		imdbIDs []string
		lastErr error
	)
	for _, imdb := range s.IMDB.Values() {
		id, err := conv(ctx, imdb)
		if err != nil {
			lastErr = err
			continue
		}
		tmdbIDs = append(tmdbIDs, id)
		imdbIDs = append(imdbIDs, imdb)
	}
	s.TMDB = ids.List(tmdbIDs...)
	s.IMDB = ids.List(imdbIDs...)
	if len(tmdbIDs) == 0 {
		return lastErr
	}
	return nil
}

// convertTMDBToIMDB fills IMDB from TMDB. A TMDb list is adopted only when
// every element converts, keeping the lists aligned.
func convertTMDBToIMDB(ctx context.Context, s *ids.Set, conv func(context.Context, int64) (string, error)) error {
	if s.TMDB.Empty() {
		return convert.NotFound("resolve", "tmdb_to_imdb", "missing tmdb id")
	}
	if !s.TMDB.IsList() {
		id, err := conv(ctx, s.TMDB.First())
		if err != nil {
			return err
		}
		s.IMDB = ids.Scalar(id)
		return nil
	}
	values := s.TMDB.Values()
	imdbIDs := make([]string, 0, len(values))
	for _, tmdb := range values {
		id, err := conv(ctx, tmdb)
		if err != nil {
			return err
		}
		imdbIDs = append(imdbIDs, id)
	}
	s.IMDB = ids.List(imdbIDs...)
	return nil
}
