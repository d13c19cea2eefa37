package trakt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"plexmeta/internal/convert"
	"plexmeta/internal/services"
)

const (
	component  = "trakt"
	apiVersion = "2"

	// Trakt allows 1000 GET calls every five minutes.
	defaultInterval = 300 * time.Millisecond
	defaultBurst    = 10
)

// IDs is the ids block Trakt attaches to every movie and show.
type IDs struct {
	Trakt int64  `json:"trakt"`
	Slug  string `json:"slug"`
	IMDB  string `json:"imdb"`
	TMDB  int64  `json:"tmdb"`
	TVDB  int64  `json:"tvdb"`
}

type media struct {
	Title string `json:"title"`
	Year  int    `json:"year"`
	IDs   IDs    `json:"ids"`
}

type searchResult struct {
	Type  string `json:"type"`
	Movie *media `json:"movie"`
	Show  *media `json:"show"`
}

// Client converts identifiers through the Trakt id lookup endpoint.
type Client struct {
	clientID   string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

var _ convert.TraktConverter = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLimiter overrides the request rate limiter.
func WithLimiter(limiter *rate.Limiter) Option {
	return func(c *Client) {
		if limiter != nil {
			c.limiter = limiter
		}
	}
}

// New creates a Trakt client.
func New(clientID, baseURL string, opts ...Option) (*Client, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, errors.New("trakt client id required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("trakt base url required")
	}
	client := &Client{
		clientID:   clientID,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(defaultInterval), defaultBurst),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// IMDBToTMDB looks the IMDb id up as a movie, then as a show.
func (c *Client) IMDBToTMDB(ctx context.Context, imdbID string) (int64, error) {
	const op = "imdb_to_tmdb"
	ids, err := c.lookupAny(ctx, op, "imdb", strings.TrimSpace(imdbID), "movie", "show")
	if err != nil {
		return 0, err
	}
	if ids.TMDB > 0 {
		return ids.TMDB, nil
	}
	return 0, convert.NotFound(component, op, imdbID)
}

// TVDBToTMDB looks the TVDb id up as a show.
func (c *Client) TVDBToTMDB(ctx context.Context, tvdbID int64) (int64, error) {
	const op = "tvdb_to_tmdb"
	ids, err := c.lookup(ctx, op, "tvdb", strconv.FormatInt(tvdbID, 10), "show")
	if err != nil {
		return 0, err
	}
	if ids.TMDB > 0 {
		return ids.TMDB, nil
	}
	return 0, convert.NotFound(component, op, tvdbID)
}

// TMDBToIMDB looks the TMDb id up as a movie, then as a show.
func (c *Client) TMDBToIMDB(ctx context.Context, tmdbID int64) (string, error) {
	const op = "tmdb_to_imdb"
	ids, err := c.lookupAny(ctx, op, "tmdb", strconv.FormatInt(tmdbID, 10), "movie", "show")
	if err != nil {
		return "", err
	}
	if ids.IMDB != "" {
		return ids.IMDB, nil
	}
	return "", convert.NotFound(component, op, tmdbID)
}

// TMDBToTVDB looks the TMDb id up as a show.
func (c *Client) TMDBToTVDB(ctx context.Context, tmdbID int64) (int64, error) {
	const op = "tmdb_to_tvdb"
	ids, err := c.lookup(ctx, op, "tmdb", strconv.FormatInt(tmdbID, 10), "show")
	if err != nil {
		return 0, err
	}
	if ids.TVDB > 0 {
		return ids.TVDB, nil
	}
	return 0, convert.NotFound(component, op, tmdbID)
}

// IMDBToTVDB looks the IMDb id up as a show.
func (c *Client) IMDBToTVDB(ctx context.Context, imdbID string) (int64, error) {
	const op = "imdb_to_tvdb"
	ids, err := c.lookup(ctx, op, "imdb", strings.TrimSpace(imdbID), "show")
	if err != nil {
		return 0, err
	}
	if ids.TVDB > 0 {
		return ids.TVDB, nil
	}
	return 0, convert.NotFound(component, op, imdbID)
}

func (c *Client) lookupAny(ctx context.Context, op, source, id string, mediaTypes ...string) (IDs, error) {
	var lastErr error
	for _, mediaType := range mediaTypes {
		ids, err := c.lookup(ctx, op, source, id, mediaType)
		if err == nil {
			return ids, nil
		}
		if !errors.Is(err, services.ErrConversionNotFound) {
			return IDs{}, err
		}
		lastErr = err
	}
	return IDs{}, lastErr
}

func (c *Client) lookup(ctx context.Context, op, source, id, mediaType string) (IDs, error) {
	if id == "" || id == "0" {
		return IDs{}, convert.NotFound(component, op, "empty "+source+" id")
	}
	results, err := c.search(ctx, op, source, id, mediaType)
	if err != nil {
		return IDs{}, err
	}
	for _, result := range results {
		item := result.Movie
		if mediaType == "show" {
			item = result.Show
		}
		if item != nil {
			return item.IDs, nil
		}
	}
	return IDs{}, convert.NotFound(component, op, id)
}

func (c *Client) search(ctx context.Context, op, source, id, mediaType string) ([]searchResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("trakt rate limit: %w", err)
	}
	endpoint, err := url.Parse(c.baseURL + "/search/" + source + "/" + url.PathEscape(id))
	if err != nil {
		return nil, fmt.Errorf("parse trakt url: %w", err)
	}
	endpoint.RawQuery = url.Values{"type": {mediaType}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("trakt-api-key", c.clientID)
	req.Header.Set("trakt-api-version", apiVersion)

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, component, op, fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, convert.NotFound(component, op, id)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, services.Wrap(services.ErrConfiguration, component, op, "client id rejected", nil)
	case resp.StatusCode != http.StatusOK:
		return nil, services.Wrap(services.ErrTransient, component, op, fmt.Sprintf("returned %d (latency=%v)", resp.StatusCode, latency), nil)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, services.Wrap(services.ErrTransient, component, op, "decode response", err)
	}
	return results, nil
}
