package testutil

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// SearchHit is one /database/search result served by FakeDiscogs.
type SearchHit struct {
	ID         int      `json:"id"`
	Title      string   `json:"title"`
	Year       string   `json:"year,omitempty"`
	Format     []string `json:"format,omitempty"`
	Label      []string `json:"label,omitempty"`
	Country    string   `json:"country,omitempty"`
	Thumb      string   `json:"thumb,omitempty"`
	CoverImage string   `json:"cover_image,omitempty"`
}

// FakeDiscogs is an httptest server speaking the subset of the Discogs API
// the catalog uses, plus a PNG image endpoint under /images/.
type FakeDiscogs struct {
	Server *httptest.Server

	mu           sync.Mutex
	barcodes     map[string][]SearchHit
	textHits     []SearchHit
	releases     map[int]map[string]any
	failStatus   int
	searchCalls  int
	releaseCalls int
	tokens       []string
	image        []byte
}

// NewFakeDiscogs starts a fake Discogs server that is closed on test cleanup.
func NewFakeDiscogs(t *testing.T) *FakeDiscogs {
	t.Helper()

	f := &FakeDiscogs{
		barcodes: map[string][]SearchHit{},
		releases: map[int]map[string]any{},
		image:    PNGBytes(t, 1200, 1200),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the base URL of the fake server.
func (f *FakeDiscogs) URL() string {
	return f.Server.URL
}

// ImageURL returns a URL on the fake server that serves a PNG cover.
func (f *FakeDiscogs) ImageURL(name string) string {
	return f.Server.URL + "/images/" + name
}

// AddBarcode registers search hits for a barcode.
func (f *FakeDiscogs) AddBarcode(barcode string, hits ...SearchHit) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.barcodes[barcode] = hits
}

// SetTextHits sets the hits returned for every free-text search.
func (f *FakeDiscogs) SetTextHits(hits ...SearchHit) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.textHits = hits
}

// AddRelease registers a release detail payload under id.
func (f *FakeDiscogs) AddRelease(id int, payload map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.releases[id] = payload
}

// FailWith makes every API call answer with status.
func (f *FakeDiscogs) FailWith(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failStatus = status
}

// SearchCalls returns the number of search requests served.
func (f *FakeDiscogs) SearchCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.searchCalls
}

// ReleaseCalls returns the number of release detail requests served.
func (f *FakeDiscogs) ReleaseCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.releaseCalls
}

// Tokens returns the personal access tokens seen, in request order.
func (f *FakeDiscogs) Tokens() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.tokens...)
}

func (f *FakeDiscogs) handle(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/images/") {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(f.image)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.tokens = append(f.tokens, strings.TrimPrefix(r.Header.Get("Authorization"), "Discogs token="))
	if f.failStatus != 0 {
		http.Error(w, `{"message": "fake failure"}`, f.failStatus)
		return
	}

	switch {
	case r.URL.Path == "/database/search":
		f.searchCalls++
		hits := f.textHits
		if barcode := r.URL.Query().Get("barcode"); barcode != "" {
			hits = f.barcodes[barcode]
		}
		if hits == nil {
			hits = []SearchHit{}
		}
		writeJSON(w, map[string]any{"results": hits})
	case strings.HasPrefix(r.URL.Path, "/releases/"):
		f.releaseCalls++
		id, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/releases/"))
		payload, ok := f.releases[id]
		if err != nil || !ok {
			http.Error(w, `{"message": "Release not found."}`, http.StatusNotFound)
			return
		}
		writeJSON(w, payload)
	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// PNGBytes encodes a solid-color width x height PNG.
func PNGBytes(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	fill := color.NRGBA{R: 200, G: 40, B: 40, A: 255}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, fill)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}
