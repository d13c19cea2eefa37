package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// OpenResource opens a remote (http/https) or local mapping file. The caller
// closes the returned reader.
func OpenResource(ctx context.Context, client *http.Client, location string) (io.ReadCloser, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, Wrap(ErrConfiguration, "resource", "open", "location is empty", nil)
	}
	if !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://") {
		file, err := os.Open(strings.TrimPrefix(location, "file://"))
		if err != nil {
			return nil, Wrap(ErrConfiguration, "resource", "open", location, err)
		}
		return file, nil
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	requestStart := time.Now()
	resp, err := client.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, Wrap(ErrTransient, "resource", "fetch", fmt.Sprintf("%s (latency=%v)", location, latency), err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, Wrap(ErrTransient, "resource", "fetch", fmt.Sprintf("%s returned %d (latency=%v)", location, resp.StatusCode, latency), nil)
	}
	return resp.Body, nil
}
