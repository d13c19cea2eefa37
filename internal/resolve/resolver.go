package resolve

import (
	"context"
	"errors"
	"log/slog"

	"plexmeta/internal/convert"
	"plexmeta/internal/guid"
	"plexmeta/internal/ids"
	"plexmeta/internal/logging"
	"plexmeta/internal/services"
)

// Cache is the identity store the resolver consults and refreshes.
type Cache interface {
	Get(ctx context.Context, kind ids.Kind, guid string) (ids.Set, bool, bool, error)
	Update(ctx context.Context, kind ids.Kind, guid string, set ids.Set, wasExpired bool) error
}

// Item is the part of a library item the resolver reads.
type Item struct {
	Title      string
	GUID       string
	Alternates []string
}

// Result is a successful resolution.
type Result struct {
	// Kind is the identifier space of IDs. Show libraries can resolve to
	// KindMovie for anime known only by TMDb.
	Kind ids.Kind
	// IDs holds the canonical ids: TMDb ids for movies (several for
	// multi-part movies), a single TVDb id for shows.
	IDs []int64
	Set ids.Set
	// FromCache is set when an unexpired cache record answered the lookup.
	FromCache bool
	// Refreshed is set when an existing cache record was overwritten.
	Refreshed bool
}

// Resolver turns native guids into canonical identifiers. It borrows the
// registry providers and the cache; it never closes them.
type Resolver struct {
	registry convert.Registry
	cache    Cache
	logger   *slog.Logger
}

// New creates a Resolver. cache may be nil to disable caching.
func New(registry convert.Registry, cache Cache, logger *slog.Logger) *Resolver {
	return &Resolver{
		registry: registry,
		cache:    cache,
		logger:   logging.NewComponentLogger(logger, "resolve"),
	}
}

// Resolve returns the canonical identifiers for item in a library of the
// given kind. Parse failures and ErrInsufficientIdentity are returned as
// errors; individual conversion failures never are.
func (r *Resolver) Resolve(ctx context.Context, item Item, kind ids.Kind) (Result, error) {
	if kind != ids.KindMovie && kind != ids.KindShow {
		return Result{}, services.Wrap(services.ErrConfiguration, "resolve", "kind", "unknown library kind "+string(kind), nil)
	}
	logger := logging.WithContext(ctx, r.logger).With(
		logging.String(logging.FieldGUID, item.GUID),
		logging.String(logging.FieldTitle, item.Title),
	)

	var (
		seed  ids.Set
		found bool
	)
	if r.cache != nil {
		cached, ok, stale, err := r.cache.Get(ctx, kind, item.GUID)
		if err != nil {
			logging.WarnWithContext(logger, "cache lookup failed", "cache_lookup_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "item resolved through providers"),
			)
		} else if ok {
			found = true
			if resultKind, sufficient := cached.Sufficient(kind); sufficient && !stale {
				return newResult(resultKind, cached, true, false), nil
			}
			logger.Debug("cached ids need refresh", logging.Bool("expired", stale))
			seed = cached
		}
	}

	parsed, err := guid.ParseItem(item.GUID, item.Alternates, kind)
	if err != nil {
		return Result{}, err
	}
	set := seed.Merge(parsed)

	for _, s := range r.steps(kind) {
		if !s.applies(set) {
			continue
		}
		err := s.run(ctx, &set)
		switch {
		case err == nil:
		case services.IsConversionMiss(err) || ctx.Err() != nil:
			logger.Debug("conversion attempt failed",
				logging.String("step", s.name),
				logging.String("error_kind", services.Kind(err)),
				logging.Error(err),
			)
		default:
			logging.WarnWithContext(logger, "provider request failed", "provider_request_failed",
				logging.String("step", s.name),
				logging.String("error_kind", services.Kind(err)),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check provider credentials and connectivity"),
				logging.String(logging.FieldImpact, "later conversion steps are tried instead"),
			)
		}
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	resultKind, sufficient := set.Sufficient(kind)
	if !sufficient {
		return Result{}, services.Wrap(services.ErrInsufficientIdentity, "", "", diagnose(set, kind, r.registry), nil)
	}

	if r.cache != nil {
		if err := r.cache.Update(ctx, kind, item.GUID, set, found); err != nil {
			logging.WarnWithContext(logger, "cache update failed", "cache_update_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check cache.path permissions or run 'plexmeta cache clear'"),
				logging.String(logging.FieldImpact, "item will be resolved again on the next run"),
			)
		}
	}
	return newResult(resultKind, set, false, found), nil
}

func newResult(kind ids.Kind, set ids.Set, fromCache, refreshed bool) Result {
	result := Result{Kind: kind, Set: set, FromCache: fromCache, Refreshed: refreshed}
	if kind == ids.KindShow {
		result.IDs = []int64{set.TVDB}
	} else {
		result.IDs = set.TMDB.Values()
	}
	return result
}

// IsItemFailure reports whether err is a per-item resolution failure rather
// than cancellation or a configuration problem.
func IsItemFailure(err error) bool {
	return errors.Is(err, services.ErrInsufficientIdentity) ||
		errors.Is(err, services.ErrNoMatch) ||
		errors.Is(err, services.ErrUnsupportedAgent)
}
