package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Fetcher retrieves the current top posts. Implemented by *Client and
// replaced by fakes in tests.
type Fetcher interface {
	FetchTop(ctx context.Context) ([]Post, error)
}

// Ensure Client implements Fetcher at compile time.
var _ Fetcher = (*Client)(nil)

const (
	DefaultBaseURL   = "https://www.reddit.com"
	DefaultSubreddit = "popular"
	DefaultLimit     = 10
	// Reddit rejects requests that do not identify a client.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) readout/0.1"
	requestTimeout   = 10 * time.Second
)

// Options configure a Client. Zero values fall back to the defaults above.
type Options struct {
	BaseURL   string
	Subreddit string
	Limit     int
	UserAgent string
	Timeout   time.Duration
}

// Client talks to the public Reddit listing API.
type Client struct {
	baseURL   *url.URL
	subreddit string
	limit     int
	userAgent string
	http      *http.Client
}

// NewClient builds a Client from opts.
func NewClient(opts Options) (*Client, error) {
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	subreddit := strings.Trim(strings.TrimSpace(opts.Subreddit), "/")
	subreddit = strings.TrimPrefix(subreddit, "r/")
	if subreddit == "" {
		subreddit = DefaultSubreddit
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = requestTimeout
	}
	return &Client{
		baseURL:   base,
		subreddit: subreddit,
		limit:     limit,
		userAgent: userAgent,
		http:      &http.Client{Timeout: timeout},
	}, nil
}

// FetchTop retrieves the top posts of the configured subreddit in listing
// order. There is no retry; callers decide what a failure means.
func (c *Client) FetchTop(ctx context.Context) ([]Post, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	values := url.Values{}
	values.Set("limit", strconv.Itoa(c.limit))
	rel := &url.URL{
		Path:     "/r/" + c.subreddit + "/top.json",
		RawQuery: values.Encode(),
	}
	var payload Listing
	if err := c.doURL(ctx, rel, &payload); err != nil {
		return nil, err
	}
	return payload.Posts(), nil
}

// Endpoint returns the listing URL FetchTop requests.
func (c *Client) Endpoint() string {
	rel := &url.URL{
		Path:     "/r/" + c.subreddit + "/top.json",
		RawQuery: "limit=" + strconv.Itoa(c.limit),
	}
	return c.baseURL.ResolveReference(rel).String()
}

func (c *Client) doURL(ctx context.Context, rel *url.URL, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("api %s returned status %d", rel.Path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
