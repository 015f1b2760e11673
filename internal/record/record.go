// Package record defines the normalized vinyl record persisted by the catalog.
package record

import (
	"strconv"
	"strings"
	"time"
)

// Separator joins multi-valued provider fields (artists, labels, genres, ...)
// into a single column value. The join is lossy and never split back.
const Separator = ", "

// Record is a normalized release as stored in the collection. JSON field
// names are the wire contract shared by the HTTP API and the store.
type Record struct {
	ID        int64  `json:"id,omitempty"`
	Barcode   string `json:"barcode"`
	DiscogsID string `json:"discogs_id"`

	Artist            string `json:"artist" validate:"required"`
	AlbumTitle        string `json:"album_title" validate:"required"`
	Format            string `json:"format"`
	FormatDescription string `json:"format_description"`
	ReleaseDate       string `json:"release_date"`
	Year              *int   `json:"year"`
	Country           string `json:"country"`
	Label             string `json:"label"`
	CatalogNumber     string `json:"catalog_number"`
	Genres            string `json:"genres"`
	Styles            string `json:"styles"`

	CoverImageURL  string  `json:"cover_image_url"`
	CoverImageData *string `json:"cover_image_data"`

	StorageLocation string `json:"storage_location"`
	Comments        string `json:"comments"`

	// Set by the store; nil on lookup fragments.
	DateAdded    *time.Time `json:"date_added,omitempty"`
	LastModified *time.Time `json:"last_modified,omitempty"`
	DiscogsURL   string     `json:"discogs_url"`
}

// Join flattens values with Separator. A nil or empty slice yields "".
func Join(values []string) string {
	return strings.Join(values, Separator)
}

// HasCover reports whether inline cover data is attached.
func (r Record) HasCover() bool {
	return r.CoverImageData != nil && *r.CoverImageData != ""
}

// YearString returns the year as text, or "" when unknown.
func (r Record) YearString() string {
	if r.Year == nil {
		return ""
	}
	return strconv.Itoa(*r.Year)
}
