package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"plexmeta/internal/config"
)

func TestLoadDefaultConfigUsesEnvAPIKey(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("TMDB_API_KEY", "test-key")
	t.Setenv("TRAKT_CLIENT_ID", "")
	t.Chdir(t.TempDir())

	cfg, path, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatalf("expected no config file, got %s", path)
	}
	if cfg.TMDB.APIKey != "test-key" {
		t.Fatalf("expected api key from env, got %q", cfg.TMDB.APIKey)
	}
	wantData := filepath.Join(tempHome, ".local", "share", "plexmeta")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: %s", cfg.Paths.DataDir)
	}
	if cfg.Cache.Path != filepath.Join(wantData, "cache.db") {
		t.Fatalf("unexpected cache path: %s", cfg.Cache.Path)
	}
	if !cfg.Cache.Enabled || cfg.Cache.ExpirationDays != 60 {
		t.Fatalf("unexpected cache defaults: %+v", cfg.Cache)
	}
	if cfg.Mapping.Workers != 1 {
		t.Fatalf("expected one worker by default, got %d", cfg.Mapping.Workers)
	}
	if cfg.TraktEnabled() {
		t.Fatal("trakt must be disabled without a client id")
	}
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "")
	t.Setenv("PLEX_TOKEN", "env-token")
	dir := t.TempDir()
	path := filepath.Join(dir, "plexmeta.toml")
	contents := `
[paths]
data_dir = "` + filepath.ToSlash(dir) + `"

[cache]
enabled = false
expiration_days = 7

[tmdb]
api_key = "file-key"

[trakt]
client_id = " trakt-id "

[plex]
url = "http://plex.local:32400/"
libraries = ["Movies", " ", "Anime"]

[mapping]
workers = 4

[logging]
format = "JSON"
level = "Debug"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: %s exists=%v", resolved, exists)
	}
	if cfg.TMDB.APIKey != "file-key" {
		t.Fatalf("file api key should win, got %q", cfg.TMDB.APIKey)
	}
	if cfg.Cache.Enabled || cfg.CacheEnabled() {
		t.Fatal("expected cache disabled")
	}
	if cfg.Cache.ExpirationDays != 7 {
		t.Fatalf("unexpected expiration: %d", cfg.Cache.ExpirationDays)
	}
	if cfg.Trakt.ClientID != "trakt-id" || !cfg.TraktEnabled() {
		t.Fatalf("unexpected trakt client id %q", cfg.Trakt.ClientID)
	}
	if cfg.Plex.URL != "http://plex.local:32400" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Plex.URL)
	}
	if cfg.Plex.Token != "env-token" {
		t.Fatalf("expected token from env, got %q", cfg.Plex.Token)
	}
	if len(cfg.Plex.Libraries) != 2 || cfg.Plex.Libraries[1] != "Anime" {
		t.Fatalf("unexpected libraries: %v", cfg.Plex.Libraries)
	}
	if cfg.Mapping.Workers != 4 {
		t.Fatalf("unexpected workers: %d", cfg.Mapping.Workers)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging not normalized: %+v", cfg.Logging)
	}
	if err := cfg.ValidatePlex(); err != nil {
		t.Fatalf("ValidatePlex returned error: %v", err)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "key")
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[cache]\nttl = 3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected unknown key to fail")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name     string
		mutate   func(*config.Config)
		fragment string
	}{
		{"missing api key", func(c *config.Config) { c.TMDB.APIKey = "" }, "tmdb.api_key"},
		{"zero expiration", func(c *config.Config) { c.Cache.ExpirationDays = 0 }, "cache.expiration_days"},
		{"too many workers", func(c *config.Config) { c.Mapping.Workers = 64 }, "mapping.workers"},
		{"no workers", func(c *config.Config) { c.Mapping.Workers = 0 }, "mapping.workers"},
		{"bad format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"bad level", func(c *config.Config) { c.Logging.Level = "trace" }, "logging.level"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.TMDB.APIKey = "key"
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.fragment) {
				t.Fatalf("expected error containing %q, got %v", tc.fragment, err)
			}
		})
	}
}

func TestValidatePlexRequiresConnection(t *testing.T) {
	cfg := config.Default()
	if err := cfg.ValidatePlex(); err == nil || !strings.Contains(err.Error(), "plex.url") {
		t.Fatalf("expected plex.url error, got %v", err)
	}
	cfg.Plex.URL = "http://plex"
	if err := cfg.ValidatePlex(); err == nil || !strings.Contains(err.Error(), "plex.token") {
		t.Fatalf("expected plex.token error, got %v", err)
	}
}

func TestCreateSampleLoads(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "key")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists || len(cfg.Plex.Libraries) != 2 {
		t.Fatalf("unexpected sample config: %+v", cfg.Plex)
	}
}

func TestExpandPathTilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err := config.ExpandPath("~/data")
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	if got != filepath.Join(home, "data") {
		t.Fatalf("unexpected expansion: %s", got)
	}
}
