package anidb

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"plexmeta/internal/convert"
	"plexmeta/internal/logging"
	"plexmeta/internal/services"
)

const component = "anidb"

type animeList struct {
	Anime []anime `xml:"anime"`
}

type anime struct {
	AniDBID string `xml:"anidbid,attr"`
	TVDBID  string `xml:"tvdbid,attr"`
	IMDBID  string `xml:"imdbid,attr"`
	Name    string `xml:"name"`
}

// Entry is the mapping known for one AniDB id.
type Entry struct {
	TVDB int64
	IMDB string
	Name string
}

// List converts AniDB ids using the community anime-list mapping file. The
// file is downloaded on first use and kept in memory.
type List struct {
	location   string
	httpClient *http.Client
	logger     *slog.Logger

	mu      sync.Mutex
	entries map[string]Entry
}

var _ convert.AniDBConverter = (*List)(nil)

// Option configures a List.
type Option func(*List)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(l *List) {
		if client != nil {
			l.httpClient = client
		}
	}
}

// WithLogger sets the logger used for load diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(l *List) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a List reading from location (URL or file path).
func New(location string, opts ...Option) (*List, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, errors.New("anidb mapping location required")
	}
	list := &List{
		location:   location,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(list)
	}
	list.logger = logging.NewComponentLogger(list.logger, component)
	return list, nil
}

// AniDBToTVDB returns the TVDb id mapped to an AniDB id.
func (l *List) AniDBToTVDB(ctx context.Context, anidbID string) (int64, error) {
	entry, err := l.entry(ctx, "anidb_to_tvdb", anidbID)
	if err != nil {
		return 0, err
	}
	if entry.TVDB <= 0 {
		return 0, convert.NotFound(component, "anidb_to_tvdb", anidbID)
	}
	return entry.TVDB, nil
}

// AniDBToIMDB returns the IMDb id mapped to an AniDB id.
func (l *List) AniDBToIMDB(ctx context.Context, anidbID string) (string, error) {
	entry, err := l.entry(ctx, "anidb_to_imdb", anidbID)
	if err != nil {
		return "", err
	}
	if entry.IMDB == "" {
		return "", convert.NotFound(component, "anidb_to_imdb", anidbID)
	}
	return entry.IMDB, nil
}

// Len returns the number of indexed entries, loading the list if needed.
func (l *List) Len(ctx context.Context) (int, error) {
	entries, err := l.load(ctx)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

func (l *List) entry(ctx context.Context, op, anidbID string) (Entry, error) {
	entries, err := l.load(ctx)
	if err != nil {
		return Entry{}, err
	}
	entry, ok := entries[strings.TrimSpace(anidbID)]
	if !ok {
		return Entry{}, convert.NotFound(component, op, anidbID)
	}
	return entry, nil
}

// load fetches and indexes the mapping file once. A failed load is retried on
// the next call.
func (l *List) load(ctx context.Context) (map[string]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.entries != nil {
		return l.entries, nil
	}

	start := time.Now()
	body, err := services.OpenResource(ctx, l.httpClient, l.location)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	entries, err := Parse(body)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, component, "load", l.location, err)
	}
	l.entries = entries
	l.logger.Info("anidb mapping loaded",
		logging.String(logging.FieldEventType, "anidb_mapping_loaded"),
		logging.Int("entries", len(entries)),
		logging.Duration("elapsed", time.Since(start)),
	)
	return entries, nil
}

// Parse indexes an anime-list XML document by AniDB id. Non-numeric TVDb
// values such as "movie" or "OVA" are dropped; the first IMDb id of a comma
// separated list is kept.
func Parse(r io.Reader) (map[string]Entry, error) {
	var doc animeList
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode anime list: %w", err)
	}
	entries := make(map[string]Entry, len(doc.Anime))
	for _, item := range doc.Anime {
		id := strings.TrimSpace(item.AniDBID)
		if id == "" {
			continue
		}
		entry := Entry{Name: strings.TrimSpace(item.Name)}
		if tvdb, err := strconv.ParseInt(strings.TrimSpace(item.TVDBID), 10, 64); err == nil && tvdb > 0 {
			entry.TVDB = tvdb
		}
		for _, candidate := range strings.Split(item.IMDBID, ",") {
			candidate = strings.TrimSpace(candidate)
			if strings.HasPrefix(candidate, "tt") {
				entry.IMDB = candidate
				break
			}
		}
		entries[id] = entry
	}
	return entries, nil
}
