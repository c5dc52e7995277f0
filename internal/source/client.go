// Package source is the shared HTTP fetcher used by every acquisition
// component: browser-like headers, a per-call timeout, a politeness rate
// limit and decoding of legacy text encodings.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout bounds a single fetch.
	DefaultTimeout = 25 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 2

	maxBodyBytes = 16 << 20
)

// Fetcher retrieves raw bodies. Components depend on this, not on *Client.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
	GetDecoded(ctx context.Context, url string, enc encoding.Encoding) ([]byte, error)
}

// Client is the production Fetcher.
type Client struct {
	httpClient     *http.Client
	limiter        *rate.Limiter
	timeout        time.Duration
	userAgent      string
	acceptLanguage string
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRateLimit sets the request rate; zero or negative disables limiting.
func WithRateLimit(requestsPerSecond float64) ClientOption {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		burst := int(requestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
}

// WithHeaders sets the User-Agent and Accept-Language sent on every request.
func WithHeaders(userAgent, acceptLanguage string) ClientOption {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
		if acceptLanguage != "" {
			c.acceptLanguage = acceptLanguage
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a Client with sane defaults.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient:     &http.Client{},
		limiter:        rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		timeout:        DefaultTimeout,
		userAgent:      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0 Safari/537.36",
		acceptLanguage: "zh-TW,zh;q=0.9,en;q=0.8",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusError reports a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// Get fetches url and returns the raw body.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	return c.get(ctx, url, nil)
}

// GetDecoded fetches url and decodes the body from enc into UTF-8.
func (c *Client) GetDecoded(ctx context.Context, url string, enc encoding.Encoding) ([]byte, error) {
	return c.get(ctx, url, enc)
}

func (c *Client) get(ctx context.Context, url string, enc encoding.Encoding) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", c.acceptLanguage)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	var r io.Reader = io.LimitReader(resp.Body, maxBodyBytes)
	if enc != nil {
		r = transform.NewReader(r, enc.NewDecoder())
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return body, nil
}
