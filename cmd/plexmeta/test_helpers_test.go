package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"plexmeta/internal/config"
	"plexmeta/internal/testsupport"
)

const plexSectionsXML = `<?xml version="1.0" encoding="UTF-8"?>
<MediaContainer size="2">
  <Directory key="1" type="movie" title="Movies"/>
  <Directory key="2" type="show" title="TV Shows"/>
</MediaContainer>`

const plexMoviesJSON = `{"MediaContainer":{"size":3,"Metadata":[
  {"ratingKey":"101","title":"The Matrix","guid":"plex://movie/5d776825880197001ec967c9",
   "Guid":[{"id":"imdb://tt0133093"},{"id":"tmdb://603"}]},
  {"ratingKey":"102","title":"The Shawshank Redemption","guid":"com.plexapp.agents.imdb://tt0111161?lang=en"},
  {"ratingKey":"103","title":"Home Video","guid":"local://103"}
]}}`

type cliTestEnv struct {
	cfg        *config.Config
	configPath string

	mu         sync.Mutex
	tmdbCalls  []string
	plexServer *httptest.Server
	tmdbServer *httptest.Server
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	env := &cliTestEnv{}
	env.tmdbServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.mu.Lock()
		env.tmdbCalls = append(env.tmdbCalls, r.URL.Path)
		env.mu.Unlock()
		switch r.URL.Path {
		case "/find/tt0111161":
			_, _ = w.Write([]byte(`{"movie_results":[{"id":278}],"tv_results":[]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(env.tmdbServer.Close)

	env.plexServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Plex-Token") != "plex-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/library/sections":
			_, _ = w.Write([]byte(plexSectionsXML))
		case "/library/sections/1/all":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(plexMoviesJSON))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(env.plexServer.Close)

	opts = append([]testsupport.ConfigOption{
		testsupport.WithTMDB("tmdb-key", env.tmdbServer.URL),
		testsupport.WithPlex(env.plexServer.URL, "plex-token", "Movies"),
	}, opts...)
	env.cfg = testsupport.NewConfig(t, opts...)
	t.Setenv("HOME", testsupport.BaseDir(env.cfg))

	env.configPath = filepath.Join(testsupport.BaseDir(env.cfg), "config.toml")
	writeTestConfig(t, env.configPath, env.cfg)
	return env
}

func (e *cliTestEnv) tmdbRequests() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.tmdbCalls))
	copy(out, e.tmdbCalls)
	return out
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
