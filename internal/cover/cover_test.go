package cover

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x += 7 {
		img.Set(x, x%height, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func imageServer(t *testing.T, contentType string, body []byte) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(body)
	}))
	t.Cleanup(server.Close)
	return server
}

func decodeDataURI(t *testing.T, data string) image.Config {
	t.Helper()
	require.True(t, strings.HasPrefix(data, "data:image/jpeg;base64,"), "unexpected prefix: %.40s", data)
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(data, "data:image/jpeg;base64,"))
	require.NoError(t, err)
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(raw))
	require.NoError(t, err)
	return cfg
}

func TestFetch_DownsizesLargeImage(t *testing.T) {
	server := imageServer(t, "image/png", pngBytes(t, 1600, 1200))
	fetcher := NewFetcher(WithHTTPClient(server.Client()))

	data, ok := fetcher.Fetch(context.Background(), server.URL+"/cover.png")
	require.True(t, ok)

	cfg := decodeDataURI(t, data)
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 600, cfg.Height)
}

func TestFetch_TallImageStaysWithinBounds(t *testing.T) {
	server := imageServer(t, "image/png", pngBytes(t, 500, 2000))
	fetcher := NewFetcher(WithHTTPClient(server.Client()))

	data, ok := fetcher.Fetch(context.Background(), server.URL)
	require.True(t, ok)

	cfg := decodeDataURI(t, data)
	assert.LessOrEqual(t, cfg.Width, 800)
	assert.LessOrEqual(t, cfg.Height, 800)
	assert.Equal(t, 800, cfg.Height)
	assert.Equal(t, 200, cfg.Width)
}

func TestFetch_DoesNotUpscale(t *testing.T) {
	server := imageServer(t, "image/png", pngBytes(t, 10, 10))
	fetcher := NewFetcher(WithHTTPClient(server.Client()))

	data, ok := fetcher.Fetch(context.Background(), server.URL)
	require.True(t, ok)

	cfg := decodeDataURI(t, data)
	assert.Equal(t, 10, cfg.Width)
	assert.Equal(t, 10, cfg.Height)
}

func TestFetch_CustomBounds(t *testing.T) {
	server := imageServer(t, "image/png", pngBytes(t, 400, 400))
	fetcher := NewFetcher(WithHTTPClient(server.Client()), WithMaxDimension(100), WithQuality(50))

	data, ok := fetcher.Fetch(context.Background(), server.URL)
	require.True(t, ok)

	cfg := decodeDataURI(t, data)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 100, cfg.Height)
}

func TestFetch_UnreachableURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	fetcher := NewFetcher(WithTimeout(time.Second))
	data, ok := fetcher.Fetch(context.Background(), url+"/missing.jpg")
	assert.False(t, ok)
	assert.Empty(t, data)
}

func TestFetch_NotAnImage(t *testing.T) {
	server := imageServer(t, "text/html", []byte("<html>nope</html>"))
	fetcher := NewFetcher(WithHTTPClient(server.Client()))

	data, ok := fetcher.Fetch(context.Background(), server.URL)
	assert.False(t, ok)
	assert.Empty(t, data)
}

func TestFetch_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	fetcher := NewFetcher(WithHTTPClient(server.Client()))
	_, err := fetcher.fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
}

func TestFetch_EmptyURL(t *testing.T) {
	fetcher := NewFetcher()
	data, ok := fetcher.Fetch(context.Background(), "")
	assert.False(t, ok)
	assert.Empty(t, data)
}

func TestNewFetcherOptions(t *testing.T) {
	f := NewFetcher(WithMaxDimension(0), WithQuality(101))
	assert.Equal(t, DefaultMaxDimension, f.maxDimension)
	assert.Equal(t, DefaultQuality, f.quality)

	f = NewFetcher(WithMaxDimension(300), WithQuality(70))
	assert.Equal(t, 300, f.maxDimension)
	assert.Equal(t, 70, f.quality)
}
