package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	vcerrors "github.com/bjtill/Vinyl-Record-Collection-Database/internal/errors"
	"github.com/bjtill/Vinyl-Record-Collection-Database/internal/lookup"
	"github.com/bjtill/Vinyl-Record-Collection-Database/internal/record"
	"github.com/bjtill/Vinyl-Record-Collection-Database/internal/tui"
)

var (
	selectCandidate = tui.Select
	isInteractive   = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
	}
)

// LookupCmd groups the Discogs lookup flows.
type LookupCmd struct {
	Barcode LookupBarcodeCmd `cmd:"" help:"Look up a release by barcode"`
	Title   LookupTitleCmd   `cmd:"" help:"Search releases by free text and pick one"`
	Release LookupReleaseCmd `cmd:"" help:"Fetch a release by its Discogs id"`
	Batch   LookupBatchCmd   `cmd:"" help:"Look up and save every barcode in a CSV file"`
}

// SaveFlags are shared by every lookup command.
type SaveFlags struct {
	Token    string `help:"Discogs personal access token (overrides discogs.token)"`
	Save     bool   `help:"Store the looked up release in the collection"`
	Location string `help:"Storage location for a saved record"`
	Comments string `help:"Comments for a saved record"`
}

// LookupBarcodeCmd runs the barcode flow.
type LookupBarcodeCmd struct {
	Code string `arg:"" help:"Barcode printed on the sleeve"`
	SaveFlags
}

// LookupTitleCmd runs the title flow followed by the release flow.
type LookupTitleCmd struct {
	Query         string `arg:"" help:"Artist and/or album title"`
	NoInteractive bool   `help:"Pick the first candidate instead of showing the picker"`
	SaveFlags
}

// LookupReleaseCmd runs the release flow.
type LookupReleaseCmd struct {
	ID      int    `arg:"" help:"Discogs release id"`
	Barcode string `help:"Barcode to attach to the record"`
	SaveFlags
}

func (c *LookupBarcodeCmd) Run(app *App) error {
	token, err := app.token(c.Token)
	if err != nil {
		return err
	}

	ctx := context.Background()
	rec, err := app.lookupService().Barcode(ctx, c.Code, token)
	if err != nil {
		return fmt.Errorf("barcode %s: %w", c.Code, err)
	}

	return finishLookup(ctx, app, rec, c.SaveFlags)
}

func (c *LookupTitleCmd) Run(app *App) error {
	token, err := app.token(c.Token)
	if err != nil {
		return err
	}

	ctx := context.Background()
	svc := app.lookupService()

	candidates, err := svc.Title(ctx, c.Query, token)
	if err != nil {
		return fmt.Errorf("title %q: %w", c.Query, err)
	}

	chosen, err := c.choose(candidates)
	if err != nil {
		return err
	}
	if chosen == nil {
		printCandidates(app.Out, candidates)
		return nil
	}

	rec, err := svc.Release(ctx, chosen.ID, "", token)
	if err != nil {
		return fmt.Errorf("release %d: %w", chosen.ID, err)
	}

	return finishLookup(ctx, app, rec, c.SaveFlags)
}

// choose returns the candidate to expand, or nil when the user skipped.
func (c *LookupTitleCmd) choose(candidates []lookup.Candidate) (*lookup.Candidate, error) {
	if c.NoInteractive || !isInteractive() {
		return &candidates[0], nil
	}

	result, err := selectCandidate(c.Query, candidates)
	if err != nil {
		return nil, fmt.Errorf("release picker: %w", err)
	}

	switch result.Action {
	case tui.ActionSelected:
		return result.Selection, nil
	case tui.ActionStopped:
		return nil, vcerrors.NewStopProcessingError(c.Query)
	default:
		return nil, nil
	}
}

func (c *LookupReleaseCmd) Run(app *App) error {
	token, err := app.token(c.Token)
	if err != nil {
		return err
	}

	ctx := context.Background()
	rec, err := app.lookupService().Release(ctx, c.ID, c.Barcode, token)
	if err != nil {
		return fmt.Errorf("release %d: %w", c.ID, err)
	}

	return finishLookup(ctx, app, rec, c.SaveFlags)
}

// finishLookup prints the fragment and persists it when --save is set.
func finishLookup(ctx context.Context, app *App, rec record.Record, flags SaveFlags) error {
	rec.StorageLocation = flags.Location
	rec.Comments = flags.Comments

	printRecord(app.Out, rec)
	if !flags.Save {
		return nil
	}

	store, err := app.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	id, err := store.Create(ctx, rec)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(app.Out, "Saved as record %d\n", id)
	return nil
}
