package resolve

import (
	"fmt"

	"plexmeta/internal/convert"
	"plexmeta/internal/ids"
)

// diagnose explains an insufficient resolution: which ids were found, which
// general-purpose provider was configured, and which id type was missing.
func diagnose(s ids.Set, kind ids.Kind, registry convert.Registry) string {
	target := "TVDb ID"
	if kind == ids.KindMovie {
		target = "TMDb ID"
	}
	provider := registry.ProviderLabel()

	var found string
	switch {
	case !s.TMDB.Empty() && !s.IMDB.Empty():
		found = fmt.Sprintf("TMDb ID: %s or IMDb ID: %s", s.TMDB, s.IMDB)
	case !s.IMDB.Empty() && s.TVDB != 0:
		found = fmt.Sprintf("IMDb ID: %s or TVDb ID: %d", s.IMDB, s.TVDB)
	case !s.TMDB.Empty():
		found = fmt.Sprintf("TMDb ID: %s", s.TMDB)
	case !s.IMDB.Empty():
		found = fmt.Sprintf("IMDb ID: %s", s.IMDB)
	case s.TVDB != 0:
		found = fmt.Sprintf("TVDb ID: %d", s.TVDB)
	}

	noCanonical := s.TMDB.Empty() && s.TVDB == 0
	switch {
	case s.AniDB != "" && noCanonical:
		return fmt.Sprintf("Unable to convert AniDb ID: %s to TMDb ID or TVDb ID", s.AniDB)
	case s.MAL != "" && noCanonical:
		return fmt.Sprintf("Unable to convert MyAnimeList ID: %s to TMDb ID or TVDb ID", s.MAL)
	case found != "" && provider != "":
		return fmt.Sprintf("Unable to convert %s to %s using %s", found, target, provider)
	case found != "":
		return fmt.Sprintf("Configure TMDb or Trakt to convert %s to %s", found, target)
	default:
		return fmt.Sprintf("No ID to convert to %s", target)
	}
}
