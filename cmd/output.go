package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/bjtill/Vinyl-Record-Collection-Database/internal/datastore"
	"github.com/bjtill/Vinyl-Record-Collection-Database/internal/lookup"
	"github.com/bjtill/Vinyl-Record-Collection-Database/internal/record"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range r {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, columns)
	for i := range configs {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft}
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// printRecord writes a labelled summary of a record or lookup fragment.
func printRecord(w io.Writer, rec record.Record) {
	_, _ = fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("%s - %s", rec.Artist, rec.AlbumTitle)))

	cover := "none"
	switch {
	case rec.HasCover():
		cover = "embedded"
	case rec.CoverImageURL != "":
		cover = rec.CoverImageURL
	}

	fields := []struct{ label, value string }{
		{"ID", idOrEmpty(rec.ID)},
		{"Barcode", rec.Barcode},
		{"Discogs ID", rec.DiscogsID},
		{"Format", joinNonEmpty(rec.Format, rec.FormatDescription)},
		{"Released", rec.ReleaseDate},
		{"Country", rec.Country},
		{"Label", rec.Label},
		{"Catalog #", rec.CatalogNumber},
		{"Genres", rec.Genres},
		{"Styles", rec.Styles},
		{"Location", rec.StorageLocation},
		{"Comments", rec.Comments},
		{"Cover", cover},
		{"Discogs", rec.DiscogsURL},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		_, _ = fmt.Fprintf(w, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-11s", f.label+":")), f.value)
	}
}

func printRecordTable(w io.Writer, records []record.Record) {
	if len(records) == 0 {
		_, _ = fmt.Fprintln(w, "No records found")
		return
	}

	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{
			strconv.FormatInt(r.ID, 10),
			r.Artist,
			r.AlbumTitle,
			r.YearString(),
			r.Format,
			r.StorageLocation,
		}
	}

	_, _ = fmt.Fprintln(w, renderTable(
		[]string{"ID", "Artist", "Album", "Year", "Format", "Location"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
	))
}

func printCandidates(w io.Writer, candidates []lookup.Candidate) {
	rows := make([][]string, len(candidates))
	for i, c := range candidates {
		rows[i] = []string{strconv.Itoa(c.ID), c.Title, c.Year, c.Format, c.Label, c.Country}
	}

	_, _ = fmt.Fprintln(w, renderTable(
		[]string{"Release", "Title", "Year", "Format", "Label", "Country"},
		rows,
		[]columnAlignment{alignRight},
	))
}

func printStats(w io.Writer, stats datastore.Stats) {
	_, _ = fmt.Fprintln(w, headingStyle.Render("Collection"))
	_, _ = fmt.Fprintf(w, "Records: %d\nArtists: %d\n\n", stats.TotalRecords, stats.TotalArtists)

	formatRows := make([][]string, len(stats.Formats))
	for i, f := range stats.Formats {
		formatRows[i] = []string{f.Format, strconv.Itoa(f.Count)}
	}
	_, _ = fmt.Fprintln(w, renderTable([]string{"Format", "Count"}, formatRows, []columnAlignment{alignLeft, alignRight}))

	yearRows := make([][]string, len(stats.Years))
	for i, y := range stats.Years {
		yearRows[i] = []string{strconv.Itoa(y.Year), strconv.Itoa(y.Count)}
	}
	_, _ = fmt.Fprintln(w, renderTable([]string{"Year", "Count"}, yearRows, []columnAlignment{alignLeft, alignRight}))
}

func idOrEmpty(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " (" + b + ")"
	}
}
