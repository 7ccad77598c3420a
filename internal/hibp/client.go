package hibp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultBaseURL is the public Pwned Passwords API endpoint.
const DefaultBaseURL = "https://api.pwnedpasswords.com"

// DefaultUserAgent identifies this client to the service.
const DefaultUserAgent = "hibpdl/1.0"

// StatusError is returned when the service answers with a non-200 status.
// These are transient as far as the downloader is concerned and are retried
// by the caller.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("hibp: unexpected status: %s", e.Status)
}

// Options configures the HTTP client.
type Options struct {
	// BaseURL is the API endpoint, without a trailing slash.
	// Default: DefaultBaseURL
	BaseURL string

	// UserAgent is sent with every request.
	// Default: DefaultUserAgent
	UserAgent string

	// Timeout for individual requests.
	// Default: 30s
	Timeout time.Duration

	// MaxIdleConnsPerHost sets the maximum idle connections per host.
	// All requests go to one host, so this bounds connection reuse
	// across the whole worker pool.
	// Default: 100
	MaxIdleConnsPerHost int
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		BaseURL:             DefaultBaseURL,
		UserAgent:           DefaultUserAgent,
		Timeout:             30 * time.Second,
		MaxIdleConnsPerHost: 100,
	}
}

// Client issues range queries against the API.
type Client struct {
	client *http.Client
	opts   Options
}

// NewClient creates a new range-query client with the given options.
// Zero-valued fields fall back to their defaults.
func NewClient(opts Options) *Client {
	def := DefaultOptions()
	if opts.BaseURL == "" {
		opts.BaseURL = def.BaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = def.UserAgent
	}
	if opts.Timeout == 0 {
		opts.Timeout = def.Timeout
	}
	if opts.MaxIdleConnsPerHost == 0 {
		opts.MaxIdleConnsPerHost = def.MaxIdleConnsPerHost
	}

	// The default transport transparently requests and decodes gzip,
	// which the API supports and which matters at ~1000 lines per range.
	transport := &http.Transport{
		MaxIdleConnsPerHost: opts.MaxIdleConnsPerHost,
		MaxIdleConns:        opts.MaxIdleConnsPerHost * 2,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
		},
		opts: opts,
	}
}

// Range fetches the response body for one 5-hex-character prefix.
// A non-200 status is reported as a *StatusError. The call is made once;
// it is up to the caller to retry.
func (c *Client) Range(ctx context.Context, prefix string) ([]byte, error) {
	url := c.opts.BaseURL + "/range/" + prefix

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("hibp: create request: %w", err)
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hibp: range %s: %w", prefix, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("hibp: read range %s: %w", prefix, err)
	}
	return body, nil
}
