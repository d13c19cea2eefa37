package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeCache(); err != nil {
		return err
	}
	c.normalizeProviders()
	c.normalizePlex()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCache() error {
	c.Cache.Path = strings.TrimSpace(c.Cache.Path)
	if c.Cache.Path == "" {
		c.Cache.Path = filepath.Join(c.Paths.DataDir, defaultCacheFile)
	}
	var err error
	if c.Cache.Path, err = expandPath(c.Cache.Path); err != nil {
		return fmt.Errorf("cache.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeProviders() {
	if c.TMDB.APIKey == "" {
		if value, ok := os.LookupEnv("TMDB_API_KEY"); ok {
			c.TMDB.APIKey = value
		}
	}
	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	c.TMDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.BaseURL), "/")
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)

	if c.Trakt.ClientID == "" {
		if value, ok := os.LookupEnv("TRAKT_CLIENT_ID"); ok {
			c.Trakt.ClientID = value
		}
	}
	c.Trakt.ClientID = strings.TrimSpace(c.Trakt.ClientID)
	c.Trakt.BaseURL = strings.TrimRight(strings.TrimSpace(c.Trakt.BaseURL), "/")
	if c.Trakt.BaseURL == "" {
		c.Trakt.BaseURL = defaultTraktBaseURL
	}

	c.AniDB.MappingURL = strings.TrimSpace(c.AniDB.MappingURL)
	if c.AniDB.MappingURL == "" {
		c.AniDB.MappingURL = defaultAniDBMappingURL
	}
	c.MyAnimeList.IDListURL = strings.TrimSpace(c.MyAnimeList.IDListURL)
	if c.MyAnimeList.IDListURL == "" {
		c.MyAnimeList.IDListURL = defaultMALIDListURL
	}
}

func (c *Config) normalizePlex() {
	if c.Plex.URL == "" {
		if value, ok := os.LookupEnv("PLEX_URL"); ok {
			c.Plex.URL = value
		}
	}
	if c.Plex.Token == "" {
		if value, ok := os.LookupEnv("PLEX_TOKEN"); ok {
			c.Plex.Token = value
		}
	}
	c.Plex.URL = strings.TrimRight(strings.TrimSpace(c.Plex.URL), "/")
	c.Plex.Token = strings.TrimSpace(c.Plex.Token)
	libraries := c.Plex.Libraries[:0]
	for _, name := range c.Plex.Libraries {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			libraries = append(libraries, trimmed)
		}
	}
	c.Plex.Libraries = libraries
	if c.Plex.TimeoutSeconds == 0 {
		c.Plex.TimeoutSeconds = defaultPlexTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
