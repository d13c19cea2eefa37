package guid

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"plexmeta/internal/ids"
	"plexmeta/internal/services"
)

// Agents recognised in native guids.
const (
	AgentPlex        = "plex"
	AgentIMDB        = "imdb"
	AgentTVDB        = "thetvdb"
	AgentTMDB        = "themoviedb"
	AgentHama        = "hama"
	AgentMyAnimeList = "myanimelist"
	AgentLocal       = "local"
)

// Split breaks a native guid into its agent (last dot-separated segment of
// the scheme) and raw id (the authority).
func Split(native string) (agent, rawID string, err error) {
	native = strings.TrimSpace(native)
	parsed, err := url.Parse(native)
	if err != nil {
		return "", "", services.Wrap(services.ErrUnsupportedAgent, "guid", "parse", fmt.Sprintf("malformed guid %q", native), err)
	}
	if parsed.Scheme == "" {
		return "", "", services.Wrap(services.ErrUnsupportedAgent, "guid", "parse", fmt.Sprintf("guid %q has no scheme", native), nil)
	}
	scheme := strings.ToLower(parsed.Scheme)
	if i := strings.LastIndex(scheme, "."); i >= 0 {
		scheme = scheme[i+1:]
	}
	return scheme, parsed.Host, nil
}

// Parse extracts whatever identifiers a native guid carries directly.
// alternates are the per-provider ids the server attaches to items matched by
// its own multi-source agent; they are ignored for every other agent.
func Parse(native string, alternates []string) (ids.Set, error) {
	agent, rawID, err := Split(native)
	if err != nil {
		return ids.Set{}, err
	}

	var set ids.Set
	switch agent {
	case AgentPlex:
		return parseAlternates(alternates)
	case AgentIMDB:
		set.IMDB = ids.Scalar(rawID)
	case AgentTVDB:
		if set.TVDB, err = parseInt(agent, rawID); err != nil {
			return ids.Set{}, err
		}
	case AgentTMDB:
		tmdb, err := parseInt(agent, rawID)
		if err != nil {
			return ids.Set{}, err
		}
		set.TMDB = ids.Scalar(tmdb)
	case AgentHama:
		return parseHama(rawID)
	case AgentMyAnimeList:
		set.MAL = rawID
	case AgentLocal:
		return ids.Set{}, services.Wrap(services.ErrNoMatch, "guid", "parse", native, nil)
	default:
		return ids.Set{}, services.Wrap(services.ErrUnsupportedAgent, "guid", "parse", fmt.Sprintf("agent %s not supported", agent), nil)
	}
	return set, nil
}

// ParseItem parses the guid of an item from a library of the given kind. The
// server's own multi-source agent is only understood in movie libraries; in
// show libraries it is unsupported and alternates are never consulted.
func ParseItem(native string, alternates []string, kind ids.Kind) (ids.Set, error) {
	if kind == ids.KindMovie {
		return Parse(native, alternates)
	}
	agent, _, err := Split(native)
	if err != nil {
		return ids.Set{}, err
	}
	if agent == AgentPlex {
		return ids.Set{}, services.Wrap(services.ErrUnsupportedAgent, "guid", "parse", fmt.Sprintf("agent %s not supported", agent), nil)
	}
	return Parse(native, nil)
}

func parseAlternates(alternates []string) (ids.Set, error) {
	var (
		tmdb []int64
		imdb []string
	)
	for _, alt := range alternates {
		parsed, err := url.Parse(strings.TrimSpace(alt))
		if err != nil {
			continue
		}
		switch strings.ToLower(parsed.Scheme) {
		case "tmdb":
			value, err := parseInt("tmdb", parsed.Host)
			if err != nil {
				return ids.Set{}, err
			}
			tmdb = append(tmdb, value)
		case "imdb":
			if parsed.Host != "" {
				imdb = append(imdb, parsed.Host)
			}
		}
	}
	return ids.Set{TMDB: collapse(tmdb), IMDB: collapse(imdb)}, nil
}

func parseHama(rawID string) (ids.Set, error) {
	_, suffix, found := strings.Cut(rawID, "-")
	switch {
	case strings.HasPrefix(rawID, "tvdb") && found:
		tvdb, err := parseInt(AgentHama, suffix)
		if err != nil {
			return ids.Set{}, err
		}
		return ids.Set{TVDB: tvdb}, nil
	case strings.HasPrefix(rawID, "anidb") && found:
		return ids.Set{AniDB: suffix}, nil
	default:
		return ids.Set{}, services.Wrap(services.ErrUnsupportedAgent, "guid", "parse", fmt.Sprintf("Hama Agent ID: %s not supported", rawID), nil)
	}
}

func parseInt(agent, raw string) (int64, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || value <= 0 {
		return 0, services.Wrap(services.ErrUnsupportedAgent, "guid", "parse", fmt.Sprintf("%s id %q is not numeric", agent, raw), nil)
	}
	return value, nil
}

func collapse[T comparable](values []T) ids.ID[T] {
	switch len(values) {
	case 0:
		return ids.ID[T]{}
	case 1:
		return ids.Scalar(values[0])
	default:
		return ids.List(values...)
	}
}
