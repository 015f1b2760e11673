// Package lookup sequences the Discogs client, the release normalizer and the
// cover fetcher into the barcode, title and release-by-id flows.
package lookup

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/bjtill/Vinyl-Record-Collection-Database/internal/discogs"
	"github.com/bjtill/Vinyl-Record-Collection-Database/internal/record"
	"github.com/bjtill/Vinyl-Record-Collection-Database/internal/release"
)

// MaxCandidates caps the title search result list.
const MaxCandidates = 10

var (
	// ErrNoResults is returned when a search yields nothing (or fails).
	ErrNoResults = errors.New("no results found")
	// ErrFetchFailed is returned when the release detail could not be fetched.
	ErrFetchFailed = errors.New("could not fetch release details")
)

// MetadataClient is the subset of the Discogs client used by the flows.
type MetadataClient interface {
	SearchByBarcode(ctx context.Context, barcode, token string) ([]discogs.SearchResult, error)
	SearchByText(ctx context.Context, query, token string) ([]discogs.SearchResult, error)
	GetRelease(ctx context.Context, releaseID int, token string) (*discogs.Release, error)
}

// CoverFetcher turns a cover URL into inline image data, best effort.
type CoverFetcher interface {
	Fetch(ctx context.Context, imageURL string) (string, bool)
}

// Candidate is a simplified title search hit offered for selection.
type Candidate struct {
	ID         int    `json:"id"`
	Artist     string `json:"artist"`
	Title      string `json:"title"`
	Year       string `json:"year"`
	Format     string `json:"format"`
	Label      string `json:"label"`
	Country    string `json:"country"`
	Thumb      string `json:"thumb"`
	CoverImage string `json:"cover_image"`
}

// Service runs the lookup flows. It never persists anything.
type Service struct {
	client MetadataClient
	covers CoverFetcher
}

// NewService creates a Service. covers may be nil to skip image downloads.
func NewService(client MetadataClient, covers CoverFetcher) *Service {
	return &Service{client: client, covers: covers}
}

// Barcode looks up a barcode, fetches the first hit's release detail and
// returns the normalized record fragment with the barcode attached.
func (s *Service) Barcode(ctx context.Context, barcode, token string) (record.Record, error) {
	results, err := s.client.SearchByBarcode(ctx, barcode, token)
	if err != nil {
		slog.Warn("Barcode search failed", "barcode", barcode, "error", err)
		return record.Record{}, ErrNoResults
	}
	if len(results) == 0 {
		slog.Info("No releases found for barcode", "barcode", barcode)
		return record.Record{}, ErrNoResults
	}

	return s.Release(ctx, results[0].ID, barcode, token)
}

// Title runs a free-text search and returns up to MaxCandidates simplified
// hits. No release detail or image is fetched.
func (s *Service) Title(ctx context.Context, query, token string) ([]Candidate, error) {
	results, err := s.client.SearchByText(ctx, query, token)
	if err != nil {
		slog.Warn("Title search failed", "query", query, "error", err)
		return nil, ErrNoResults
	}
	if len(results) == 0 {
		slog.Info("No releases found for query", "query", query)
		return nil, ErrNoResults
	}

	if len(results) > MaxCandidates {
		results = results[:MaxCandidates]
	}

	candidates := make([]Candidate, len(results))
	for i, r := range results {
		candidates[i] = toCandidate(r)
	}
	return candidates, nil
}

// Release fetches a release by id, normalizes it, attaches barcode (which
// may be empty) and tries to inline the cover image.
func (s *Service) Release(ctx context.Context, releaseID int, barcode, token string) (record.Record, error) {
	detail, err := s.client.GetRelease(ctx, releaseID, token)
	if err != nil {
		slog.Warn("Release fetch failed", "release_id", releaseID, "error", err)
		return record.Record{}, ErrFetchFailed
	}

	rec := release.Normalize(*detail)
	rec.DiscogsID = strconv.Itoa(detail.ID)
	rec.Barcode = barcode

	if rec.CoverImageURL != "" && s.covers != nil {
		if data, ok := s.covers.Fetch(ctx, rec.CoverImageURL); ok {
			rec.CoverImageData = &data
		}
	}

	slog.Debug("Release normalized", "release_id", releaseID, "artist", rec.Artist, "title", rec.AlbumTitle)
	return rec, nil
}

func toCandidate(r discogs.SearchResult) Candidate {
	return Candidate{
		ID:         r.ID,
		Artist:     record.Join(strings.Split(r.Artist, " - ")),
		Title:      r.Title,
		Year:       r.Year,
		Format:     record.Join(r.Format),
		Label:      record.Join(r.Label),
		Country:    r.Country,
		Thumb:      r.Thumb,
		CoverImage: r.CoverImage,
	}
}
