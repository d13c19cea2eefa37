package plex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime"
	"strings"
	"sync"
	"time"

	"plexmeta/internal/logging"
	"plexmeta/internal/services"
)

const (
	component   = "plex"
	productName = "plexmeta"
	userAgent   = "plexmeta/0.1.0"
)

// ErrAuthorizationMissing indicates the server rejected the configured token.
var ErrAuthorizationMissing = errors.New("plex authorization missing or rejected")

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client reads library sections and items from a Plex Media Server.
type Client struct {
	baseURL  string
	token    string
	clientID string
	http     HTTPDoer
	logger   *slog.Logger

	mu       sync.Mutex
	sections []Section
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithLogger sets the logger used for section resolution diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClientIdentifier sets the X-Plex-Client-Identifier header value.
func WithClientIdentifier(id string) Option {
	return func(c *Client) {
		c.clientID = strings.TrimSpace(id)
	}
}

// New creates a Plex client for the server at baseURL.
func New(baseURL, token string, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("plex url required")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("plex token required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &Client{
		baseURL:  baseURL,
		token:    token,
		clientID: productName,
		http:     &http.Client{Timeout: timeout},
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, component)
	return client, nil
}

// CheckAuth verifies that the server accepts the configured token.
func (c *Client) CheckAuth(ctx context.Context) error {
	resp, err := c.get(ctx, "check_auth", "/library/sections", "application/xml")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) get(ctx context.Context, op, path, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build plex request: %w", err)
	}
	req.Header.Set("X-Plex-Token", c.token)
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", userAgent)
	applyStandardHeaders(req, c.clientID)

	requestStart := time.Now()
	resp, err := c.http.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, component, op, fmt.Sprintf("request failed (latency=%v)", latency), err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, services.Wrap(services.ErrConfiguration, component, op, "token rejected", ErrAuthorizationMissing)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		resp.Body.Close()
		return nil, services.Wrap(services.ErrTransient, component, op,
			fmt.Sprintf("returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}
	return resp, nil
}

func applyStandardHeaders(req *http.Request, clientIdentifier string) {
	req.Header.Set("X-Plex-Client-Identifier", clientIdentifier)
	req.Header.Set("X-Plex-Product", productName)
	req.Header.Set("X-Plex-Platform", runtime.GOOS)
}
