package mal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cast"

	"plexmeta/internal/convert"
	"plexmeta/internal/logging"
	"plexmeta/internal/services"
)

const component = "mal"

// List converts MyAnimeList ids using a community anime id list (JSON array of
// objects carrying mal_id, thetvdb_id and themoviedb_id). The list is
// downloaded on first use and kept in memory.
type List struct {
	location   string
	httpClient *http.Client
	logger     *slog.Logger

	mu      sync.Mutex
	entries map[string]convert.MALIDs
}

var _ convert.MALConverter = (*List)(nil)

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
		return nil, errors.New("mal id list location required")
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

// Lookup returns every id the list associates with malID.
func (l *List) Lookup(ctx context.Context, malID string) (convert.MALIDs, error) {
	entries, err := l.load(ctx)
	if err != nil {
		return convert.MALIDs{}, err
	}
	ids, ok := entries[strings.TrimSpace(malID)]
	if !ok {
		return convert.MALIDs{}, convert.NotFound(component, "lookup", malID)
	}
	return ids, nil
}

// MALToTVDB returns the TVDb id mapped to malID.
func (l *List) MALToTVDB(ctx context.Context, malID string) (int64, error) {
	ids, err := l.Lookup(ctx, malID)
	if err != nil {
		return 0, err
	}
	if ids.TVDB <= 0 {
		return 0, convert.NotFound(component, "mal_to_tvdb", malID)
	}
	return ids.TVDB, nil
}

// MALToTMDB returns the TMDb id mapped to malID.
func (l *List) MALToTMDB(ctx context.Context, malID string) (int64, error) {
	ids, err := l.Lookup(ctx, malID)
	if err != nil {
		return 0, err
	}
	if ids.TMDB <= 0 {
		return 0, convert.NotFound(component, "mal_to_tmdb", malID)
	}
	return ids.TMDB, nil
}

func (l *List) load(ctx context.Context) (map[string]convert.MALIDs, error) {
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
	l.logger.Info("mal id list loaded",
		logging.String(logging.FieldEventType, "mal_list_loaded"),
		logging.Int("entries", len(entries)),
		logging.Duration("elapsed", time.Since(start)),
	)
	return entries, nil
}

// Parse indexes a MAL id list by mal_id. The published lists mix numbers and
// numeric strings, so fields are decoded loosely; unusable values become zero.
func Parse(r io.Reader) (map[string]convert.MALIDs, error) {
	var raw []map[string]any
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode mal id list: %w", err)
	}
	entries := make(map[string]convert.MALIDs, len(raw))
	for _, item := range raw {
		malID := looseID(item["mal_id"])
		if malID <= 0 {
			continue
		}
		entries[cast.ToString(malID)] = convert.MALIDs{
			TVDB: looseID(item["thetvdb_id"]),
			TMDB: looseID(item["themoviedb_id"]),
		}
	}
	return entries, nil
}

func looseID(value any) int64 {
	if value == nil {
		return 0
	}
	// cast reads "010" as octal; list ids are always decimal.
	if text, ok := value.(string); ok {
		id, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil || id < 0 {
			return 0
		}
		return id
	}
	id, err := cast.ToInt64E(value)
	if err != nil || id < 0 {
		return 0
	}
	return id
}
