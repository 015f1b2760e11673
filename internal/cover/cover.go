// Package cover downloads release cover art and turns it into a bounded,
// inline JPEG data URI.
package cover

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	// DefaultMaxDimension bounds both width and height of the re-encoded cover.
	DefaultMaxDimension = 800
	// DefaultQuality is the JPEG quality used when re-encoding.
	DefaultQuality = 85
	// DefaultTimeout bounds the image download.
	DefaultTimeout = 10 * time.Second

	// maxDownloadBytes caps how much of a response body is read.
	maxDownloadBytes = 20 << 20

	dataURIPrefix = "data:image/jpeg;base64,"
)

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Fetcher downloads and re-encodes cover images.
type Fetcher struct {
	httpClient   HTTPDoer
	maxDimension int
	quality      int
}

// Option is a functional option for configuring the Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c HTTPDoer) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.httpClient = c
		}
	}
}

// WithTimeout replaces the default HTTP client with one using timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		if timeout > 0 {
			f.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithMaxDimension sets the bounding box edge length in pixels.
func WithMaxDimension(px int) Option {
	return func(f *Fetcher) {
		if px > 0 {
			f.maxDimension = px
		}
	}
}

// WithQuality sets the JPEG quality (1-100).
func WithQuality(q int) Option {
	return func(f *Fetcher) {
		if q >= 1 && q <= 100 {
			f.quality = q
		}
	}
}

// NewFetcher creates a Fetcher with 800x800 bounds, quality 85 and a 10s timeout.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		httpClient:   &http.Client{Timeout: DefaultTimeout},
		maxDimension: DefaultMaxDimension,
		quality:      DefaultQuality,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the cover at imageURL as a data URI. Failures are logged and
// reported as ("", false); they never abort the caller.
func (f *Fetcher) Fetch(ctx context.Context, imageURL string) (string, bool) {
	if imageURL == "" {
		return "", false
	}

	data, err := f.fetch(ctx, imageURL)
	if err != nil {
		slog.Warn("Failed to fetch cover image", "url", imageURL, "error", err)
		return "", false
	}
	return data, true
}

func (f *Fetcher) fetch(ctx context.Context, imageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %d downloading image", resp.StatusCode)
	}

	return f.encode(io.LimitReader(resp.Body, maxDownloadBytes))
}

// encode decodes r, fits it into the bounding box and re-encodes it as JPEG.
func (f *Fetcher) encode(r io.Reader) (string, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	// Fit never upscales and keeps the aspect ratio.
	img = imaging.Fit(img, f.maxDimension, f.maxDimension, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(f.quality)); err != nil {
		return "", fmt.Errorf("encode jpeg: %w", err)
	}

	return dataURIPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
