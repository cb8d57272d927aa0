// Package search provides the single web-search tool the dispatch model may
// request during a turn, backed by an HTTP search API.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	logx "github.com/gamenerd/server/pkg/logger"
)

// ToolWebSearch is the function name exposed to the dispatch model.
const ToolWebSearch = "search_web"

const (
	defaultMaxResults = 5
	maxResponseBytes  = 1 << 20
)

// Result is one search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Searcher executes a web search query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// Config configures the HTTP search client from env.
type Config struct {
	APIURL     string `envconfig:"SEARCH_API_URL"`
	APIKey     string `envconfig:"SEARCH_API_KEY"`
	MaxResults int    `envconfig:"SEARCH_MAX_RESULTS" default:"5"`
	TimeoutSec int    `envconfig:"SEARCH_TIMEOUT" default:"10"`
}

// Enabled reports whether the search backend is configured at all. When it
// is not, the tool is simply never bound.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.APIURL) != ""
}

// HTTPClient is a Searcher over a JSON search API.
type HTTPClient struct {
	apiURL     string
	apiKey     string
	maxResults int
	httpClient *http.Client
}

// NewHTTPClient builds a Searcher from config. Returns nil when the backend
// is not configured.
func NewHTTPClient(cfg Config) *HTTPClient {
	if !cfg.Enabled() {
		return nil
	}
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	return &HTTPClient{
		apiURL:     strings.TrimRight(cfg.APIURL, "/"),
		apiKey:     cfg.APIKey,
		maxResults: maxResults,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Search(ctx context.Context, query string) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty search query")
	}

	u := c.apiURL + "?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logx.Error().Err(err).Str("query", query).Msg("search request failed")
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logx.Warn().Int("status", resp.StatusCode).Str("query", query).Msg("search API returned non-200")
		return nil, fmt.Errorf("search API status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}

	var payload struct {
		Results []Result `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	results := payload.Results
	if len(results) > c.maxResults {
		results = results[:c.maxResults]
	}
	logx.Debug().Str("query", query).Int("results", len(results)).Msg("search completed")
	return results, nil
}

// ToolInfo describes the search tool for model binding.
func ToolInfo() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name: ToolWebSearch,
		Desc: "Searches the web for current sports and gaming information. Use only when the provided data is insufficient.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {
				Type:     schema.String,
				Desc:     "The search query",
				Required: true,
			},
		}),
	}
}

// FormatResults renders hits as a compact text block for the model. Links
// are intentionally omitted so they can never leak into replies.
func FormatResults(results []Result) string {
	if len(results) == 0 {
		return "No search results found."
	}
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s\n", i+1, strings.TrimSpace(r.Title))
		if s := strings.TrimSpace(r.Snippet); s != "" {
			b.WriteString(s)
			b.WriteString("\n")
		}
	}
	return strings.TrimSpace(b.String())
}

var _ Searcher = (*HTTPClient)(nil)
