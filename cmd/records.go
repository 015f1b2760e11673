package cmd

import (
	"context"
	"fmt"

	"github.com/bjtill/Vinyl-Record-Collection-Database/internal/datastore"
)

// RecordsCmd groups the record store commands.
type RecordsCmd struct {
	List   RecordsListCmd   `cmd:"" help:"List stored records"`
	Show   RecordsShowCmd   `cmd:"" help:"Show one record"`
	Delete RecordsDeleteCmd `cmd:"" help:"Delete a record"`
}

// RecordsListCmd lists records.
type RecordsListCmd struct {
	Search    string `short:"s" help:"Substring matched against artist, album title and label"`
	SortBy    string `help:"Sort column" enum:"artist,album_title,year,date_added,storage_location" default:"artist"`
	SortOrder string `help:"Sort direction" enum:"asc,desc,ASC,DESC" default:"asc"`
}

// RecordsShowCmd prints one record.
type RecordsShowCmd struct {
	ID int64 `arg:"" help:"Record id"`
}

// RecordsDeleteCmd removes one record.
type RecordsDeleteCmd struct {
	ID int64 `arg:"" help:"Record id"`
}

func (c *RecordsListCmd) Run(app *App) error {
	ctx := context.Background()
	store, err := app.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	records, err := store.List(ctx, datastore.ListQuery{
		Search:    c.Search,
		SortBy:    c.SortBy,
		SortOrder: c.SortOrder,
	})
	if err != nil {
		return err
	}

	printRecordTable(app.Out, records)
	return nil
}

func (c *RecordsShowCmd) Run(app *App) error {
	ctx := context.Background()
	store, err := app.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	rec, err := store.Get(ctx, c.ID)
	if err != nil {
		return err
	}

	printRecord(app.Out, rec)
	return nil
}

func (c *RecordsDeleteCmd) Run(app *App) error {
	ctx := context.Background()
	store, err := app.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Delete(ctx, c.ID); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(app.Out, "Deleted record %d\n", c.ID)
	return nil
}

// StatsCmd prints collection statistics.
type StatsCmd struct{}

func (c *StatsCmd) Run(app *App) error {
	ctx := context.Background()
	store, err := app.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	stats, err := store.Stats(ctx)
	if err != nil {
		return err
	}

	printStats(app.Out, stats)
	return nil
}
