package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"plexmeta/internal/config"
	"plexmeta/internal/convert"
	"plexmeta/internal/idcache"
	"plexmeta/internal/logging"
	"plexmeta/internal/resolve"
	"plexmeta/internal/services/anidb"
	"plexmeta/internal/services/mal"
	"plexmeta/internal/services/tmdb"
	"plexmeta/internal/services/trakt"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil {
			if level := strings.ToLower(strings.TrimSpace(*c.logLevelFlag)); level != "" {
				cfg.Logging.Level = level
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// session bundles the collaborators one command invocation resolves with.
type session struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry convert.Registry
	cache    *idcache.Cache
}

func (s *session) resolver() *resolve.Resolver {
	// A nil *idcache.Cache must not become a non-nil interface.
	var cache resolve.Cache
	if s.cache != nil {
		cache = s.cache
	}
	return resolve.New(s.registry, cache, s.logger)
}

func (s *session) Close() error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Close()
}

func (c *commandContext) openSession(withCache bool) (*session, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	registry, err := buildRegistry(cfg, logger)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, logger: logger, registry: registry}
	if withCache && cfg.CacheEnabled() {
		cache, err := idcache.Open(cfg.Cache.Path, cfg.Cache.ExpirationDays, logger)
		if err != nil {
			return nil, fmt.Errorf("open identity cache: %w", err)
		}
		s.cache = cache
	}
	return s, nil
}

func (c *commandContext) openCache() (*idcache.Cache, string, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, "", err
	}
	if !cfg.CacheEnabled() {
		return nil, "Identity cache is disabled (set [cache] enabled = true in config.toml)", nil
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, "", err
	}
	cache, err := idcache.Open(cfg.Cache.Path, cfg.Cache.ExpirationDays, logger)
	if err != nil {
		return nil, "", fmt.Errorf("open identity cache: %w", err)
	}
	return cache, "", nil
}

// buildRegistry wires every configured provider. Unconfigured providers stay
// nil so the resolver skips their steps.
func buildRegistry(cfg *config.Config, logger *slog.Logger) (convert.Registry, error) {
	var registry convert.Registry

	tmdbClient, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language)
	if err != nil {
		return convert.Registry{}, fmt.Errorf("init tmdb client: %w", err)
	}
	registry.TMDB = tmdbClient

	if cfg.TraktEnabled() {
		traktClient, err := trakt.New(cfg.Trakt.ClientID, cfg.Trakt.BaseURL)
		if err != nil {
			return convert.Registry{}, fmt.Errorf("init trakt client: %w", err)
		}
		registry.Trakt = traktClient
	}
	if cfg.AniDB.Enabled {
		list, err := anidb.New(cfg.AniDB.MappingURL, anidb.WithLogger(logger))
		if err != nil {
			return convert.Registry{}, fmt.Errorf("init anidb list: %w", err)
		}
		registry.AniDB = list
	}
	if cfg.MyAnimeList.Enabled {
		list, err := mal.New(cfg.MyAnimeList.IDListURL, mal.WithLogger(logger))
		if err != nil {
			return convert.Registry{}, fmt.Errorf("init mal list: %w", err)
		}
		registry.MAL = list
	}
	return registry, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
