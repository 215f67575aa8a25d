// Package api implements the HTTP client for the data-analysis backend.
package api

import (
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds a full analysis round-trip. Exploratory analysis of
// a large CSV can legitimately take minutes.
const DefaultTimeout = 5 * time.Minute

// Client talks to one analysis backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
	chartDir   string
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithChartDir sets the directory where fetched charts are stored.
func WithChartDir(dir string) ClientOption {
	return func(c *Client) {
		c.chartDir = dir
	}
}

// NewClient creates a Client for the backend at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ResolveURL turns a server-relative reference (e.g. /outputs/plot.png)
// into an absolute URL against the backend. Absolute references pass
// through unchanged.
func (c *Client) ResolveURL(ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	return c.baseURL + ref
}
