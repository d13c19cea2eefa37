package testsupport

import (
	"testing"
	"time"

	"plexmeta/internal/config"
	"plexmeta/internal/idcache"
)

// MustOpenCache opens the identity cache described by cfg and registers cleanup.
func MustOpenCache(t testing.TB, cfg *config.Config, now func() time.Time) *idcache.Cache {
	t.Helper()

	var opts []idcache.Option
	if now != nil {
		opts = append(opts, idcache.WithClock(now))
	}
	cache, err := idcache.Open(cfg.Cache.Path, cfg.Cache.ExpirationDays, nil, opts...)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() {
		_ = cache.Close()
	})
	return cache
}
