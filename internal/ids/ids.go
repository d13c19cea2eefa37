package ids

import (
	"fmt"
	"strings"
)

// Kind classifies a library or a resolved identifier space.
type Kind string

const (
	KindMovie Kind = "movie"
	KindShow  Kind = "show"
)

// ParseKind maps a user or server supplied label onto a Kind.
func ParseKind(value string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "movie", "movies":
		return KindMovie, nil
	case "show", "shows", "tv", "series":
		return KindShow, nil
	default:
		return "", fmt.Errorf("unknown media kind %q", value)
	}
}

func (k Kind) String() string { return string(k) }

// ID holds either a single identifier or an ordered list of identifiers of the
// same scheme. Lists only occur for multi-part movies.
type ID[T comparable] struct {
	values []T
	list   bool
}

// Scalar wraps a single identifier. The zero value of T yields an empty ID.
func Scalar[T comparable](v T) ID[T] {
	var zero T
	if v == zero {
		return ID[T]{}
	}
	return ID[T]{values: []T{v}}
}

// List wraps an ordered identifier list. Zero values are kept so that
// index alignment with a parallel list survives.
func List[T comparable](vs ...T) ID[T] {
	cp := make([]T, len(vs))
	copy(cp, vs)
	return ID[T]{values: cp, list: true}
}

// Empty reports whether no identifier is present. An empty list is empty.
func (id ID[T]) Empty() bool { return len(id.values) == 0 }

// IsList reports whether the identifier was built as a list.
func (id ID[T]) IsList() bool { return id.list }

// Len returns the number of identifiers held.
func (id ID[T]) Len() int { return len(id.values) }

// First returns the first identifier or the zero value.
func (id ID[T]) First() T {
	var zero T
	if len(id.values) == 0 {
		return zero
	}
	return id.values[0]
}

// Values returns a copy of the held identifiers.
func (id ID[T]) Values() []T {
	if len(id.values) == 0 {
		return nil
	}
	cp := make([]T, len(id.values))
	copy(cp, id.values)
	return cp
}

func (id ID[T]) String() string {
	switch {
	case len(id.values) == 0:
		return "None"
	case !id.list:
		return fmt.Sprint(id.values[0])
	default:
		parts := make([]string, len(id.values))
		for i, v := range id.values {
			parts[i] = fmt.Sprint(v)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
}

// Set is the cross-referenced identifier bundle for one library item.
type Set struct {
	TMDB  ID[int64]
	IMDB  ID[string]
	TVDB  int64
	AniDB string
	MAL   string
}

// Aligned reports whether a list-valued TMDB id has a matching IMDB list.
func (s Set) Aligned() bool {
	if !s.TMDB.IsList() || s.IMDB.Empty() {
		return true
	}
	return s.IMDB.IsList() && s.IMDB.Len() == s.TMDB.Len()
}

// IsAnime reports whether the set carries an anime-database identifier.
func (s Set) IsAnime() bool {
	return s.AniDB != "" || s.MAL != ""
}

// Merge returns s with every non-empty field of override applied on top.
func (s Set) Merge(override Set) Set {
	out := s
	if !override.TMDB.Empty() {
		out.TMDB = override.TMDB
	}
	if !override.IMDB.Empty() {
		out.IMDB = override.IMDB
	}
	if override.TVDB != 0 {
		out.TVDB = override.TVDB
	}
	if override.AniDB != "" {
		out.AniDB = override.AniDB
	}
	if override.MAL != "" {
		out.MAL = override.MAL
	}
	return out
}

// Sufficient reports whether the set resolves for a library of the given kind
// and the identifier space the result belongs to. Show libraries fall back to
// the movie space when only an anime id and a TMDB id are known.
func (s Set) Sufficient(kind Kind) (Kind, bool) {
	switch kind {
	case KindMovie:
		return KindMovie, !s.TMDB.Empty()
	case KindShow:
		if s.TVDB != 0 {
			return KindShow, true
		}
		if s.IsAnime() && !s.TMDB.Empty() {
			return KindMovie, true
		}
	}
	return "", false
}
