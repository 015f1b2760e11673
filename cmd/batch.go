package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/bjtill/Vinyl-Record-Collection-Database/internal/csvutil"
	"github.com/bjtill/Vinyl-Record-Collection-Database/internal/lookup"
)

// LookupBatchCmd runs the barcode flow for every row of a CSV file and saves the hits.
type LookupBatchCmd struct {
	File   string `arg:"" help:"CSV file with a barcode column and optional storage_location and comments columns" type:"existingfile"`
	Token  string `help:"Discogs personal access token (overrides discogs.token)"`
	DryRun bool   `help:"Look up releases without saving them"`
}

type batchRow struct {
	Line     int
	Barcode  string
	Location string
	Comments string
}

func parseBatchRow(r csvutil.Row) (batchRow, error) {
	barcode := r.Get("barcode")
	if barcode == "" {
		return batchRow{}, errors.New("barcode is empty")
	}
	return batchRow{
		Line:     r.Line,
		Barcode:  barcode,
		Location: r.Get("storage_location"),
		Comments: r.Get("comments"),
	}, nil
}

func (c *LookupBatchCmd) Run(app *App) error {
	token, err := app.token(c.Token)
	if err != nil {
		return err
	}

	rows, err := csvutil.ProcessFile(c.File, parseBatchRow, csvutil.ProcessorOptions{
		Required:    []string{"barcode"},
		SkipInvalid: true,
	})
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, err := app.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	svc := app.lookupService()
	report := make([][]string, 0, len(rows))
	var saved, failed int

	for _, row := range rows {
		rec, err := svc.Barcode(ctx, row.Barcode, token)
		if err != nil {
			failed++
			status := "not found"
			if errors.Is(err, lookup.ErrFetchFailed) {
				status = "fetch failed"
			}
			slog.Warn("Batch lookup failed", "line", row.Line, "barcode", row.Barcode, "error", err)
			report = append(report, []string{row.Barcode, status, "", ""})
			continue
		}

		rec.StorageLocation = row.Location
		rec.Comments = row.Comments

		id := ""
		if !c.DryRun {
			newID, err := store.Create(ctx, rec)
			if err != nil {
				failed++
				slog.Warn("Batch save failed", "line", row.Line, "barcode", row.Barcode, "error", err)
				report = append(report, []string{row.Barcode, "save failed", "", rec.Artist + " - " + rec.AlbumTitle})
				continue
			}
			id = strconv.FormatInt(newID, 10)
			saved++
		}

		report = append(report, []string{row.Barcode, "ok", id, rec.Artist + " - " + rec.AlbumTitle})
	}

	_, _ = fmt.Fprintln(app.Out, renderTable([]string{"Barcode", "Status", "Record", "Release"}, report, nil))
	_, _ = fmt.Fprintf(app.Out, "%d rows, %d saved, %d failed\n", len(rows), saved, failed)
	return nil
}
