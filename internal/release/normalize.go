// Package release maps Discogs release documents onto the flat record schema.
package release

import (
	"strconv"

	"github.com/bjtill/Vinyl-Record-Collection-Database/internal/discogs"
	"github.com/bjtill/Vinyl-Record-Collection-Database/internal/record"
)

// Normalize extracts the record fields from a release document. Identity
// (id, discogs id, barcode), timestamps and inline cover data are left for
// the caller to fill. Only the first format and the first image are used.
func Normalize(r discogs.Release) record.Record {
	out := record.Record{
		Artist:     artistNames(r.Artists),
		AlbumTitle: r.Title,
		Country:    r.Country,
		Genres:     record.Join(r.Genres),
		Styles:     record.Join(r.Styles),
		DiscogsURL: r.URI,
	}

	out.Label, out.CatalogNumber = labelsAndCatalogNumbers(r.Labels)

	if len(r.Formats) > 0 {
		out.Format = r.Formats[0].Name
		out.FormatDescription = record.Join(r.Formats[0].Descriptions)
	}

	if len(r.Images) > 0 {
		out.CoverImageURL = r.Images[0].URI
	}

	if r.Year > 0 {
		year := r.Year
		out.Year = &year
	}

	switch {
	case r.Released != "":
		out.ReleaseDate = r.Released
	case out.Year != nil:
		out.ReleaseDate = strconv.Itoa(*out.Year)
	}

	return out
}

func artistNames(artists []discogs.Artist) string {
	names := make([]string, len(artists))
	for i, a := range artists {
		names[i] = a.Name
	}
	return record.Join(names)
}

// labelsAndCatalogNumbers joins label names and catalog numbers in the same
// order so both columns carry the same number of segments.
func labelsAndCatalogNumbers(labels []discogs.Label) (string, string) {
	names := make([]string, len(labels))
	catalogNumbers := make([]string, len(labels))
	for i, l := range labels {
		names[i] = l.Name
		catalogNumbers[i] = l.CatNo
	}
	return record.Join(names), record.Join(catalogNumbers)
}
