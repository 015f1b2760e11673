// Package discogs provides a client for the Discogs database API.
package discogs

import (
	"net/http"
	"strings"
	"time"

	"github.com/bjtill/Vinyl-Record-Collection-Database/internal/ratelimit"
)

const (
	// DefaultBaseURL is the public Discogs API endpoint.
	DefaultBaseURL = "https://api.discogs.com"
	// DefaultUserAgent identifies this application to Discogs.
	DefaultUserAgent = "VinylCollectionApp/1.0"
	// DefaultTimeout bounds every request made by the client.
	DefaultTimeout = 10 * time.Second
)

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Config holds the connection settings for a Client.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		UserAgent: DefaultUserAgent,
		Timeout:   DefaultTimeout,
	}
}

// Client is a Discogs API client. The access token is supplied per call.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient HTTPDoer
	limiter    *ratelimit.Limiter
}

// NewClient creates a new Discogs API client from cfg. Zero fields in cfg
// fall back to the defaults.
func NewClient(cfg Config, opts ...Option) *Client {
	defaults := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.UserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}

	client := &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client. The caller is then responsible
// for its timeout.
func WithHTTPClient(c HTTPDoer) Option {
	return func(client *Client) {
		if c != nil {
			client.httpClient = c
		}
	}
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(base string) Option {
	return func(client *Client) {
		if base != "" {
			client.baseURL = strings.TrimSuffix(base, "/")
		}
	}
}

// WithRateLimiter throttles outgoing requests. A nil limiter disables throttling.
func WithRateLimiter(l *ratelimit.Limiter) Option {
	return func(client *Client) {
		client.limiter = l
	}
}
