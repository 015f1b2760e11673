package datastore

import (
	"context"

	"github.com/bjtill/Vinyl-Record-Collection-Database/internal/record"
)

// Store is the persistence contract for the record collection.
type Store interface {
	// Connect opens the database and applies pending migrations.
	Connect(ctx context.Context) error

	// Ping checks that the database is reachable.
	Ping(ctx context.Context) error

	Create(ctx context.Context, rec record.Record) (int64, error)
	Get(ctx context.Context, id int64) (record.Record, error)
	Update(ctx context.Context, id int64, rec record.Record) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, q ListQuery) ([]record.Record, error)
	Stats(ctx context.Context) (Stats, error)

	// Close closes the connection to the data store
	Close() error
}

// ListQuery filters and orders a record listing.
type ListQuery struct {
	// Search is a case-insensitive substring matched against artist, album title and label.
	Search    string
	SortBy    string
	SortOrder string
}

// Stats summarizes the collection.
type Stats struct {
	TotalRecords int           `json:"total_records"`
	TotalArtists int           `json:"total_artists"`
	Formats      []FormatCount `json:"formats"`
	Years        []YearCount   `json:"years"`
}

// FormatCount is the number of records sharing a format.
type FormatCount struct {
	Format string `json:"format"`
	Count  int    `json:"count"`
}

// YearCount is the number of records released in a year.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}
