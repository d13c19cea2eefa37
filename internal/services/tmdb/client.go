package tmdb

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
	component = "tmdb"

	// TMDb allows roughly 50 requests per second per IP.
	defaultRequestsPerSecond = 40
	defaultBurst             = 20
)

type findResult struct {
	ID int64 `json:"id"`
}

type findResponse struct {
	MovieResults []findResult `json:"movie_results"`
	TVResults    []findResult `json:"tv_results"`
}

// ExternalIDs models the /external_ids payload for movies and shows.
type ExternalIDs struct {
	ID     int64  `json:"id"`
	IMDBID string `json:"imdb_id"`
	TVDBID int64  `json:"tvdb_id"`
}

// Client converts identifiers through the TMDb API.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

var _ convert.TMDBConverter = (*Client)(nil)

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

// New creates a TMDb client.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   strings.TrimSpace(language),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(time.Second/defaultRequestsPerSecond), defaultBurst),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// IMDBToTMDB finds the TMDb id for an IMDb id, preferring movie matches.
func (c *Client) IMDBToTMDB(ctx context.Context, imdbID string) (int64, error) {
	const op = "imdb_to_tmdb"
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		return 0, convert.NotFound(component, op, "empty imdb id")
	}
	var payload findResponse
	if err := c.get(ctx, op, "/find/"+url.PathEscape(imdbID), url.Values{"external_source": {"imdb_id"}}, &payload); err != nil {
		return 0, err
	}
	if id := firstID(payload.MovieResults); id > 0 {
		return id, nil
	}
	if id := firstID(payload.TVResults); id > 0 {
		return id, nil
	}
	return 0, convert.NotFound(component, op, imdbID)
}

// TVDBToTMDB finds the TMDb id for a TVDb id, preferring show matches.
func (c *Client) TVDBToTMDB(ctx context.Context, tvdbID int64) (int64, error) {
	const op = "tvdb_to_tmdb"
	if tvdbID <= 0 {
		return 0, convert.NotFound(component, op, tvdbID)
	}
	var payload findResponse
	path := "/find/" + strconv.FormatInt(tvdbID, 10)
	if err := c.get(ctx, op, path, url.Values{"external_source": {"tvdb_id"}}, &payload); err != nil {
		return 0, err
	}
	if id := firstID(payload.TVResults); id > 0 {
		return id, nil
	}
	if id := firstID(payload.MovieResults); id > 0 {
		return id, nil
	}
	return 0, convert.NotFound(component, op, tvdbID)
}

// TMDBToIMDB returns the IMDb id of a TMDb movie, falling back to the show
// with the same id.
func (c *Client) TMDBToIMDB(ctx context.Context, tmdbID int64) (string, error) {
	const op = "tmdb_to_imdb"
	if tmdbID <= 0 {
		return "", convert.NotFound(component, op, tmdbID)
	}
	var movie ExternalIDs
	err := c.get(ctx, op, fmt.Sprintf("/movie/%d/external_ids", tmdbID), nil, &movie)
	if err == nil && movie.IMDBID != "" {
		return movie.IMDBID, nil
	}
	if err != nil && !errors.Is(err, services.ErrConversionNotFound) {
		return "", err
	}
	var show ExternalIDs
	if err := c.get(ctx, op, fmt.Sprintf("/tv/%d/external_ids", tmdbID), nil, &show); err != nil {
		return "", err
	}
	if show.IMDBID != "" {
		return show.IMDBID, nil
	}
	return "", convert.NotFound(component, op, tmdbID)
}

// TMDBToTVDB returns the TVDb id of a TMDb show.
func (c *Client) TMDBToTVDB(ctx context.Context, tmdbID int64) (int64, error) {
	const op = "tmdb_to_tvdb"
	if tmdbID <= 0 {
		return 0, convert.NotFound(component, op, tmdbID)
	}
	var show ExternalIDs
	if err := c.get(ctx, op, fmt.Sprintf("/tv/%d/external_ids", tmdbID), nil, &show); err != nil {
		return 0, err
	}
	if show.TVDBID > 0 {
		return show.TVDBID, nil
	}
	return 0, convert.NotFound(component, op, tmdbID)
}

func (c *Client) get(ctx context.Context, op, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("tmdb rate limit: %w", err)
	}
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse tmdb url: %w", err)
	}
	query := url.Values{}
	for key, values := range params {
		query[key] = values
	}
	query.Set("api_key", c.apiKey)
	if c.language != "" {
		query.Set("language", c.language)
	}
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return services.Wrap(services.ErrTransient, component, op, fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return convert.NotFound(component, op, path)
	case resp.StatusCode == http.StatusUnauthorized:
		return services.Wrap(services.ErrConfiguration, component, op, "api key rejected", nil)
	case resp.StatusCode != http.StatusOK:
		return services.Wrap(services.ErrTransient, component, op, fmt.Sprintf("returned %d (latency=%v)", resp.StatusCode, latency), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrTransient, component, op, "decode response", err)
	}
	return nil
}

func firstID(results []findResult) int64 {
	for _, result := range results {
		if result.ID > 0 {
			return result.ID
		}
	}
	return 0
}
