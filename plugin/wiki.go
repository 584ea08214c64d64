package plugin

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"

	"github.com/tidwall/gjson"
)

const wikipediaAPI = "https://en.wikipedia.org/w/api.php"

// Search snippets come back with HTML highlight markup.
var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)

// Wikipedia searches articles through the MediaWiki search API.
type Wikipedia struct {
	baseURL    string
	numResults int
	client     *http.Client
}

// WikipediaOptions configure the Wikipedia plugin.
type WikipediaOptions struct {
	Options
	// BaseURL overrides the MediaWiki API endpoint.
	BaseURL string
}

// NewWikipedia creates the Wikipedia search plugin.
func NewWikipedia(optFns ...func(o *WikipediaOptions)) *Wikipedia {
	opts := WikipediaOptions{Options: defaultOptions(), BaseURL: wikipediaAPI}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Wikipedia{
		baseURL:    opts.BaseURL,
		numResults: opts.NumResults,
		client:     opts.HTTPClient,
	}
}

// Name implements Plugin.
func (p *Wikipedia) Name() string { return "WikiSearch" }

// Description implements Plugin.
func (p *Wikipedia) Description() string {
	return "Search Wikipedia articles for factual and encyclopedic knowledge."
}

// Search implements Plugin. Each result is "title: snippet" with the
// highlight markup stripped.
func (p *Wikipedia) Search(ctx context.Context, query string) ([]string, error) {
	q := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {query},
		"srlimit":  {strconv.Itoa(p.numResults)},
		"format":   {"json"},
	}
	body, err := fetch(ctx, p.client, p.baseURL+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("wiki search: %w", err)
	}

	var results []string
	for _, item := range gjson.GetBytes(body, "query.search").Array() {
		title := item.Get("title").String()
		snippet := htmlTagPattern.ReplaceAllString(item.Get("snippet").String(), "")
		results = append(results, title+": "+snippet)
		if len(results) >= p.numResults {
			break
		}
	}
	return results, nil
}
