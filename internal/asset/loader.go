// Package asset adapts the external asset layer to the navigation
// controller's ImageLoader contract.
package asset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPLoader fetches panorama images over HTTP to verify they load. The
// body is discarded; the point is surfacing a definite success or failure
// before the controller commits a transition (and letting intermediary
// caches warm up).
type HTTPLoader struct {
	client  *http.Client
	baseURL string
}

// NewHTTPLoader builds a loader with the given per-request timeout.
// Relative image URLs are resolved against baseURL when it is non-empty.
func NewHTTPLoader(baseURL string, timeout time.Duration) *HTTPLoader {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPLoader{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// Load implements nav.ImageLoader.
func (l *HTTPLoader) Load(ctx context.Context, url string) error {
	full := url
	if l.baseURL != "" && !isAbsolute(url) {
		full = l.baseURL + "/" + url
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", full, err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", full, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("fetch %s: unexpected status %d", full, resp.StatusCode)
	}
	return nil
}

func isAbsolute(url string) bool {
	return len(url) > 8 && (url[:7] == "http://" || url[:8] == "https://")
}

// StaticLoader is a no-op loader for offline demos and tests: every load
// succeeds immediately.
type StaticLoader struct{}

// Load implements nav.ImageLoader.
func (StaticLoader) Load(context.Context, string) error { return nil }
