package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains data and log directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Cache contains configuration for the persistent identity cache.
type Cache struct {
	Enabled        bool   `toml:"enabled"`
	ExpirationDays int    `toml:"expiration_days"`
	Path           string `toml:"path"` // Default: <data_dir>/cache.db
}

// TMDB contains configuration for The Movie Database API.
type TMDB struct {
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
	Language string `toml:"language"`
}

// Trakt contains configuration for the Trakt API. Trakt is optional; an empty
// client id disables it.
type Trakt struct {
	ClientID string `toml:"client_id"`
	BaseURL  string `toml:"base_url"`
}

// AniDB contains configuration for the AniDB mapping list.
type AniDB struct {
	Enabled    bool   `toml:"enabled"`
	MappingURL string `toml:"mapping_url"`
}

// MyAnimeList contains configuration for the MyAnimeList id list.
type MyAnimeList struct {
	Enabled   bool   `toml:"enabled"`
	IDListURL string `toml:"id_list_url"`
}

// Plex contains configuration for the media server item source.
type Plex struct {
	URL            string   `toml:"url"`
	Token          string   `toml:"token"`
	Libraries      []string `toml:"libraries"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

// Mapping contains configuration for library mapping runs.
type Mapping struct {
	Workers int `toml:"workers"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for plexmeta.
//
// Configuration sections by subsystem:
//   - Paths: data and log directories
//   - Cache: identity cache toggle, location and expiration
//   - TMDB, Trakt: general-purpose id converters
//   - AniDB, MyAnimeList: anime id lists
//   - Plex: media server connection and libraries to map
//   - Mapping: worker count for mapping runs
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	Cache       Cache       `toml:"cache"`
	TMDB        TMDB        `toml:"tmdb"`
	Trakt       Trakt       `toml:"trakt"`
	AniDB       AniDB       `toml:"anidb"`
	MyAnimeList MyAnimeList `toml:"mal"`
	Plex        Plex        `toml:"plex"`
	Mapping     Mapping     `toml:"mapping"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return nil, "", false, fmt.Errorf("parse config: %s", strict.String())
			}
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("plexmeta.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CacheEnabled reports whether the identity cache should be opened.
func (c *Config) CacheEnabled() bool {
	return c.Cache.Enabled && strings.TrimSpace(c.Cache.Path) != ""
}

// TraktEnabled reports whether Trakt credentials are configured.
func (c *Config) TraktEnabled() bool {
	return strings.TrimSpace(c.Trakt.ClientID) != ""
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
