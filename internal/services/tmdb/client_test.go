package tmdb_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/time/rate"

	"plexmeta/internal/services"
	"plexmeta/internal/services/tmdb"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *tmdb.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := tmdb.New("key", server.URL, "en", tmdb.WithLimiter(rate.NewLimiter(rate.Inf, 1)))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := tmdb.New("", "https://example.com", "en"); err == nil {
		t.Fatal("expected error when api key missing")
	}
}

func TestIMDBToTMDB(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/find/tt0111161" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("external_source") != "imdb_id" || r.URL.Query().Get("api_key") != "key" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"movie_results":[{"id":278}],"tv_results":[]}`))
	})

	id, err := client.IMDBToTMDB(context.Background(), "tt0111161")
	if err != nil {
		t.Fatalf("IMDBToTMDB returned error: %v", err)
	}
	if id != 278 {
		t.Fatalf("expected 278, got %d", id)
	}
}

func TestIMDBToTMDBNoResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"movie_results":[],"tv_results":[]}`))
	})
	_, err := client.IMDBToTMDB(context.Background(), "tt0000001")
	if !errors.Is(err, services.ErrConversionNotFound) {
		t.Fatalf("expected ErrConversionNotFound, got %v", err)
	}
}

func TestTVDBToTMDBPrefersShows(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("external_source") != "tvdb_id" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"movie_results":[{"id":1}],"tv_results":[{"id":1399}]}`))
	})
	id, err := client.TVDBToTMDB(context.Background(), 121361)
	if err != nil || id != 1399 {
		t.Fatalf("TVDBToTMDB = %d, %v; want 1399", id, err)
	}
}

func TestTMDBToIMDBFallsBackToShow(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/movie/1399/external_ids":
			w.WriteHeader(http.StatusNotFound)
		case "/tv/1399/external_ids":
			_, _ = w.Write([]byte(`{"id":1399,"imdb_id":"tt0944947","tvdb_id":121361}`))
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	})
	imdb, err := client.TMDBToIMDB(context.Background(), 1399)
	if err != nil || imdb != "tt0944947" {
		t.Fatalf("TMDBToIMDB = %q, %v", imdb, err)
	}
}

func TestTMDBToTVDB(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":1399,"tvdb_id":121361}`))
	})
	id, err := client.TMDBToTVDB(context.Background(), 1399)
	if err != nil || id != 121361 {
		t.Fatalf("TMDBToTVDB = %d, %v", id, err)
	}
}

func TestServerErrorIsTransient(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err := client.TMDBToTVDB(context.Background(), 1)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected ErrTransient, got %v", err)
	}
}
