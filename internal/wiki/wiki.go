// Package wiki searches Wikipedia through the MediaWiki action API.
package wiki

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	apierrors "github.com/diogo/wikichat/internal/errors"
)

const (
	// DefaultResults is the number of pages returned by a search
	DefaultResults = 3
	// DefaultMaxChars caps the length of the formatted search result
	DefaultMaxChars = 4000
	// NoResults is returned by Run when nothing matched
	NoResults = "No good Wikipedia Search Result was found"

	maxBodyBytes = 2 << 20
	userAgent    = "wikichat/0.1 (https://github.com/diogo/wikichat)"
)

// Page is one search hit
type Page struct {
	Title   string
	Extract string
	index   int
}

// Searcher is what the answerer needs from Wikipedia
type Searcher interface {
	Run(ctx context.Context, query string) (string, error)
}

// Client queries the MediaWiki API
type Client struct {
	httpClient tls_client.HttpClient
	baseURL    string
	results    int
	maxChars   int
	logger     *zap.Logger
}

// Ensure Client implements Searcher
var _ Searcher = (*Client)(nil)

// Option configures the client
type Option func(*Client)

// WithLanguage targets the Wikipedia of the given language code
func WithLanguage(lang string) Option {
	return func(c *Client) {
		if lang != "" {
			c.baseURL = fmt.Sprintf("https://%s.wikipedia.org/w/api.php", lang)
		}
	}
}

// WithBaseURL sets the API URL directly
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithResults sets how many pages a search returns
func WithResults(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.results = n
		}
	}
}

// WithMaxChars caps the formatted output of Run
func WithMaxChars(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxChars = n
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client (used by tests)
func WithHTTPClient(httpClient tls_client.HttpClient) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the diagnostic logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a Wikipedia client
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:  "https://en.wikipedia.org/w/api.php",
		results:  DefaultResults,
		maxChars: DefaultMaxChars,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(),
			tls_client.WithClientProfile(profiles.Chrome_120),
			tls_client.WithTimeoutSeconds(int((30 * time.Second).Seconds())),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		c.httpClient = httpClient
	}

	return c, nil
}

// Search returns the top pages for query with their introductory extracts,
// in relevance order.
func (c *Client) Search(ctx context.Context, query string) ([]Page, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("generator", "search")
	params.Set("gsrsearch", query)
	params.Set("gsrlimit", strconv.Itoa(c.results))
	params.Set("prop", "extracts")
	params.Set("exintro", "1")
	params.Set("explaintext", "1")
	params.Set("exlimit", strconv.Itoa(c.results))
	params.Set("redirects", "1")

	endpoint := c.baseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("wikipedia search", zap.String("query", query))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apierrors.NewNetworkError("wikipedia search", c.baseURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, apierrors.NewNetworkError("read wikipedia response", c.baseURL, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apierrors.NewHTTPErrorWithBody(resp.StatusCode, c.baseURL, string(body), "")
	}

	return parsePages(body)
}

func parsePages(body []byte) ([]Page, error) {
	if !gjson.ValidBytes(body) {
		return nil, apierrors.NewParseError("wikipedia response is not valid JSON", "")
	}

	result := gjson.ParseBytes(body)
	if msg := result.Get("error.info"); msg.Exists() {
		return nil, fmt.Errorf("wikipedia: %s", msg.String())
	}

	var pages []Page
	result.Get("query.pages").ForEach(func(_, page gjson.Result) bool {
		pages = append(pages, Page{
			Title:   page.Get("title").String(),
			Extract: strings.TrimSpace(page.Get("extract").String()),
			index:   int(page.Get("index").Int()),
		})
		return true
	})

	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].index < pages[j].index
	})

	return pages, nil
}

// Run searches for query and formats the hits as "Page: ...\nSummary: ..."
// blocks, truncated to the configured length.
func (c *Client) Run(ctx context.Context, query string) (string, error) {
	pages, err := c.Search(ctx, query)
	if err != nil {
		return "", err
	}
	return Format(pages, c.maxChars), nil
}

// Format renders pages for a prompt, truncated to maxChars runes
func Format(pages []Page, maxChars int) string {
	var blocks []string
	for _, p := range pages {
		if p.Extract == "" {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("Page: %s\nSummary: %s", p.Title, p.Extract))
	}
	if len(blocks) == 0 {
		return NoResults
	}

	out := strings.Join(blocks, "\n\n")
	if maxChars > 0 {
		if r := []rune(out); len(r) > maxChars {
			out = string(r[:maxChars])
		}
	}
	return out
}
