package mal_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"plexmeta/internal/services"
	"plexmeta/internal/services/mal"
)

const sampleList = `[
  {"mal_id": 5114, "thetvdb_id": 85249, "themoviedb_id": 31911, "type": "TV"},
  {"mal_id": "199", "themoviedb_id": "129", "type": "MOVIE"},
  {"mal_id": 30, "thetvdb_id": "unknown"},
  {"anidb_id": 1}
]`

func TestParseLooseNumbers(t *testing.T) {
	entries, err := mal.Parse(strings.NewReader(sampleList))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if got := entries["5114"]; got.TVDB != 85249 || got.TMDB != 31911 {
		t.Fatalf("unexpected numeric entry: %+v", got)
	}
	if got := entries["199"]; got.TVDB != 0 || got.TMDB != 129 {
		t.Fatalf("unexpected string entry: %+v", got)
	}
	if got := entries["30"]; got.TVDB != 0 || got.TMDB != 0 {
		t.Fatalf("unexpected junk entry: %+v", got)
	}
}

func TestParseZeroPaddedStringsAreDecimal(t *testing.T) {
	entries, err := mal.Parse(strings.NewReader(`[{"mal_id": "0100", "thetvdb_id": "010", "themoviedb_id": " 0042 "}]`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	got, ok := entries["100"]
	if !ok || len(entries) != 1 {
		t.Fatalf("expected entry keyed 100, got %v", entries)
	}
	if got.TVDB != 10 || got.TMDB != 42 {
		t.Fatalf("zero-padded ids decoded as %+v, want TVDB 10 TMDB 42", got)
	}
}

func TestListConversions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleList))
	}))
	t.Cleanup(server.Close)

	list, err := mal.New(server.URL)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := context.Background()

	ids, err := list.Lookup(ctx, "5114")
	if err != nil || ids.TVDB != 85249 {
		t.Fatalf("Lookup = %+v, %v", ids, err)
	}
	if tmdb, err := list.MALToTMDB(ctx, "199"); err != nil || tmdb != 129 {
		t.Fatalf("MALToTMDB = %d, %v", tmdb, err)
	}
	if _, err := list.MALToTVDB(ctx, "199"); !errors.Is(err, services.ErrConversionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := list.Lookup(ctx, "1"); !errors.Is(err, services.ErrConversionNotFound) {
		t.Fatalf("expected not found for unknown id, got %v", err)
	}
}
