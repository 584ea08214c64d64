package plugin

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultNumResults caps how many results a plugin returns per query.
const DefaultNumResults = 3

// Plugin answers one query with a list of short text results.
type Plugin interface {
	// Name is the identifier tool-call detection must emit to reach this
	// plugin. Matching is case-insensitive.
	Name() string
	// Description is a one-line summary suitable for a detection prompt.
	Description() string
	// Search executes the query. An empty result list is a valid answer.
	Search(ctx context.Context, query string) ([]string, error)
}

// Options are shared across the built-in plugins.
type Options struct {
	// NumResults caps the results per query.
	NumResults int
	// HTTPClient is the client used for upstream requests.
	HTTPClient *http.Client
}

func defaultOptions() Options {
	return Options{
		NumResults: DefaultNumResults,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// fetch issues a GET and returns the response body, treating any non-200
// status as an error.
func fetch(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
