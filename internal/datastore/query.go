package datastore

import (
	"strings"
)

// DefaultSortColumn is used when the requested sort column is not allowed.
const DefaultSortColumn = "artist"

var sortColumns = map[string]bool{
	"artist":           true,
	"album_title":      true,
	"year":             true,
	"date_added":       true,
	"storage_location": true,
}

const recordColumns = `id, barcode, discogs_id, artist, album_title, format, format_description,
	release_date, year, country, label, catalog_number, genres, styles,
	cover_image_url, cover_image_data, storage_location, comments,
	date_added, last_modified, discogs_url`

// buildListSQL returns the listing query and its arguments. Sort column and
// direction are interpolated only after passing the whitelist.
func buildListSQL(q ListQuery) (string, []any) {
	var sb strings.Builder
	var args []any

	sb.WriteString("SELECT ")
	sb.WriteString(recordColumns)
	sb.WriteString(" FROM records")

	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		sb.WriteString(" WHERE artist LIKE ? OR album_title LIKE ? OR label LIKE ?")
		args = append(args, pattern, pattern, pattern)
	}

	sb.WriteString(" ORDER BY ")
	sb.WriteString(sortColumn(q.SortBy))
	sb.WriteString(" ")
	sb.WriteString(sortOrder(q.SortOrder))
	sb.WriteString(", id ASC")

	return sb.String(), args
}

func sortColumn(name string) string {
	if sortColumns[name] {
		return name
	}
	return DefaultSortColumn
}

func sortOrder(order string) string {
	if strings.EqualFold(order, "desc") {
		return "DESC"
	}
	return "ASC"
}
