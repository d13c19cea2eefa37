package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateMapping(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

// ValidatePlex ensures the media server connection is configured. Only
// commands that enumerate libraries need it.
func (c *Config) ValidatePlex() error {
	if c.Plex.URL == "" {
		return errors.New("plex.url is required. Set PLEX_URL env var or edit the [plex] section")
	}
	if c.Plex.Token == "" {
		return errors.New("plex.token is required. Set PLEX_TOKEN env var or edit the [plex] section")
	}
	if c.Plex.TimeoutSeconds <= 0 {
		return errors.New("plex.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateTMDB() error {
	if c.TMDB.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("tmdb.api_key is required. Set TMDB_API_KEY env var or edit %s (create with 'plexmeta config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.Enabled && c.Cache.ExpirationDays <= 0 {
		return errors.New("cache.expiration_days must be positive")
	}
	return nil
}

func (c *Config) validateMapping() error {
	if c.Mapping.Workers < 1 || c.Mapping.Workers > maxMappingWorkers {
		return fmt.Errorf("mapping.workers must be between 1 and %d", maxMappingWorkers)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
