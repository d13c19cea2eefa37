package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"plexmeta/internal/testsupport"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.cfg.Cache.Path)

	out, _, err = runCLI(t, []string{"config", "validate", "--plex"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate --plex: %v", err)
	}
	requireContains(t, out, "reachable at "+env.plexServer.URL)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting an existing file")
	}
}

func TestMapCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"map", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("map: %v", err)
	}

	var views []struct {
		Library   string            `json:"library"`
		Kind      string            `json:"kind"`
		Processed int               `json:"processed"`
		Movies    map[string]string `json:"movies"`
		Shows     map[string]string `json:"shows"`
		Failures  []struct {
			Handle string `json:"handle"`
			Kind   string `json:"kind"`
		} `json:"failures"`
	}
	if err := json.Unmarshal([]byte(out), &views); err != nil {
		t.Fatalf("decode map output: %v\n%s", err, out)
	}
	if len(views) != 1 {
		t.Fatalf("expected one mapping, got %d", len(views))
	}
	view := views[0]
	if view.Library != "Movies" || view.Kind != "movie" || view.Processed != 3 {
		t.Fatalf("unexpected mapping header: %+v", view)
	}
	if view.Movies["603"] != "101" || view.Movies["278"] != "102" || len(view.Movies) != 2 {
		t.Fatalf("unexpected movies: %v", view.Movies)
	}
	if len(view.Failures) != 1 || view.Failures[0].Handle != "103" || view.Failures[0].Kind != "no_match" {
		t.Fatalf("unexpected failures: %+v", view.Failures)
	}

	// The second run answers from the cache.
	before := len(env.tmdbRequests())
	if _, _, err := runCLI(t, []string{"map", "--json"}, env.configPath); err != nil {
		t.Fatalf("second map: %v", err)
	}
	if after := len(env.tmdbRequests()); after != before {
		t.Fatalf("expected cached run to skip TMDb, saw %d new requests", after-before)
	}
}

func TestMapCommandParallelWithoutCache(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithoutCache(), testsupport.WithWorkers(4))

	for run := 0; run < 2; run++ {
		out, _, err := runCLI(t, []string{"map", "Movies"}, env.configPath)
		if err != nil {
			t.Fatalf("map run %d: %v", run, err)
		}
		requireContains(t, out, "Movies\tmovie\t3\t2\t0\t1")
	}
	// Without a cache every run asks TMDb again.
	if got := len(env.tmdbRequests()); got != 2 {
		t.Fatalf("expected 2 TMDb requests, got %d", got)
	}
	if _, err := os.Stat(env.cfg.Cache.Path); !os.IsNotExist(err) {
		t.Fatalf("cache database must not be created when disabled: %v", err)
	}

	out, _, err := runCLI(t, []string{"cache", "stats"}, env.configPath)
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	requireContains(t, out, "Identity cache is disabled")
}

func TestMapCommandTable(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"map", "Movies"}, env.configPath)
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	requireContains(t, out, "Library\tKind\tItems\tMovies\tShows\tUnmapped")
	requireContains(t, out, "Movies\tmovie\t3\t2\t0\t1")
	requireContains(t, out, "Home Video")
}

func TestMapCommandRefusesConcurrentRun(t *testing.T) {
	env := setupCLITestEnv(t)

	lock := flock.New(env.cfg.Cache.Path + ".lock")
	if err := os.MkdirAll(filepath.Dir(env.cfg.Cache.Path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	ok, err := lock.TryLock()
	if err != nil || !ok {
		t.Fatalf("take lock: ok=%v err=%v", ok, err)
	}
	defer func() { _ = lock.Unlock() }()

	_, _, err = runCLI(t, []string{"map"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "in progress") {
		t.Fatalf("expected lock contention error, got %v", err)
	}
}

func TestMapCommandUnknownLibrary(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"map", "Music Videos Archive"}, env.configPath); err == nil {
		t.Fatal("expected error for a library the server does not have")
	}
}

func TestResolveAndCacheCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"resolve", "com.plexapp.agents.imdb://tt0111161?lang=en", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	var result struct {
		Kind      string   `json:"kind"`
		IDs       []int64  `json:"ids"`
		IMDB      []string `json:"imdb_id"`
		FromCache bool     `json:"from_cache"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode resolve output: %v\n%s", err, out)
	}
	if result.Kind != "movie" || len(result.IDs) != 1 || result.IDs[0] != 278 || result.FromCache {
		t.Fatalf("unexpected resolve result: %+v", result)
	}

	out, _, err = runCLI(t, []string{"resolve", "com.plexapp.agents.imdb://tt0111161?lang=en", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode resolve output: %v", err)
	}
	if !result.FromCache {
		t.Fatal("expected second resolve to come from the cache")
	}

	out, _, err = runCLI(t, []string{"cache", "stats"}, env.configPath)
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	requireContains(t, out, "Entries: 1 (1 movies, 0 shows)")

	out, _, err = runCLI(t, []string{"cache", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}
	requireContains(t, out, "tt0111161")

	out, _, err = runCLI(t, []string{"cache", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "Removed 1 cached id sets")
}

func TestResolveReportsInsufficientIdentity(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"resolve", "com.plexapp.agents.thetvdb://121361", "--kind", "movie"}, env.configPath)
	if err == nil {
		t.Fatal("expected resolve to fail without a TMDb match")
	}
	requireContains(t, err.Error(), "insufficient identity")
}

func TestRenderTablePlain(t *testing.T) {
	out := renderTable([]string{"A", "B"}, [][]string{{"1"}}, nil, true)
	requireContains(t, out, "A\tB")
	requireContains(t, out, "1\t")
	if strings.Contains(out, "╭") {
		t.Fatalf("plain table must not draw borders: %q", out)
	}

	boxed := renderTable([]string{"A", "B"}, [][]string{{"1", "2"}}, []columnAlignment{alignLeft, alignRight}, false)
	requireContains(t, boxed, "╭")
}
