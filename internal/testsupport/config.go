package testsupport

import (
	"path/filepath"
	"testing"

	"plexmeta/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.TMDB.APIKey = "test"
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Cache.Path = filepath.Join(base, "data", "cache.db")
	cfgVal.AniDB.Enabled = false
	cfgVal.MyAnimeList.Enabled = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithTMDB points the TMDb client at baseURL with the given key.
func WithTMDB(key, baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.APIKey = key
		if baseURL != "" {
			b.cfg.TMDB.BaseURL = baseURL
		}
	}
}

// WithPlex sets the media server connection and libraries.
func WithPlex(url, token string, libraries ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Plex.URL = url
		b.cfg.Plex.Token = token
		b.cfg.Plex.Libraries = libraries
	}
}

// WithoutCache disables the identity cache.
func WithoutCache() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Enabled = false
	}
}

// WithWorkers sets the mapping worker count.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Mapping.Workers = n
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
