package plugin

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"
)

const googleSearchAPI = "https://www.googleapis.com/customsearch/v1"

// Google searches the web through the programmable search (custom search)
// API. It needs an API key and a search engine identifier.
type Google struct {
	baseURL    string
	apiKey     string
	engineID   string
	numResults int
	client     *http.Client
}

// GoogleOptions configure the Google plugin.
type GoogleOptions struct {
	Options
	// BaseURL overrides the custom search endpoint.
	BaseURL string
}

// NewGoogle creates the Google search plugin.
func NewGoogle(apiKey, engineID string, optFns ...func(o *GoogleOptions)) *Google {
	opts := GoogleOptions{Options: defaultOptions(), BaseURL: googleSearchAPI}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Google{
		baseURL:    opts.BaseURL,
		apiKey:     apiKey,
		engineID:   engineID,
		numResults: opts.NumResults,
		client:     opts.HTTPClient,
	}
}

// Name implements Plugin.
func (p *Google) Name() string { return "GoogleSearch" }

// Description implements Plugin.
func (p *Google) Description() string {
	return "Search the web for current events and general information."
}

// Search implements Plugin. Each result is "title: snippet".
func (p *Google) Search(ctx context.Context, query string) ([]string, error) {
	q := url.Values{
		"key": {p.apiKey},
		"cx":  {p.engineID},
		"q":   {query},
		"num": {strconv.Itoa(p.numResults)},
	}
	body, err := fetch(ctx, p.client, p.baseURL+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("google search: %w", err)
	}

	var results []string
	for _, item := range gjson.GetBytes(body, "items").Array() {
		title := item.Get("title").String()
		snippet := item.Get("snippet").String()
		results = append(results, title+": "+snippet)
		if len(results) >= p.numResults {
			break
		}
	}
	return results, nil
}
