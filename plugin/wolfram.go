package plugin

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const wolframShortAnswerAPI = "https://api.wolframalpha.com/v1/result"

// Wolfram answers computational and factual queries through the WolframAlpha
// short answers API, which returns a single plain-text line.
type Wolfram struct {
	baseURL string
	appID   string
	client  *http.Client
}

// WolframOptions configure the Wolfram plugin.
type WolframOptions struct {
	Options
	// BaseURL overrides the short answers endpoint.
	BaseURL string
}

// NewWolfram creates the WolframAlpha plugin.
func NewWolfram(appID string, optFns ...func(o *WolframOptions)) *Wolfram {
	opts := WolframOptions{Options: defaultOptions(), BaseURL: wolframShortAnswerAPI}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Wolfram{
		baseURL: opts.BaseURL,
		appID:   appID,
		client:  opts.HTTPClient,
	}
}

// Name implements Plugin.
func (p *Wolfram) Name() string { return "Wolfram" }

// Description implements Plugin.
func (p *Wolfram) Description() string {
	return "Answer math, science and unit-conversion questions with computed results."
}

// Search implements Plugin. The short answers API yields at most one result.
func (p *Wolfram) Search(ctx context.Context, query string) ([]string, error) {
	q := url.Values{
		"appid": {p.appID},
		"i":     {query},
	}
	body, err := fetch(ctx, p.client, p.baseURL+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("wolfram query: %w", err)
	}
	answer := strings.TrimSpace(string(body))
	if answer == "" {
		return nil, nil
	}
	return []string{answer}, nil
}
