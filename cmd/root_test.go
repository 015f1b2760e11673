package cmd

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/alecthomas/kong"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	vcerrors "github.com/bjtill/Vinyl-Record-Collection-Database/internal/errors"
	"github.com/bjtill/Vinyl-Record-Collection-Database/internal/lookup"
	"github.com/bjtill/Vinyl-Record-Collection-Database/internal/record"
	"github.com/bjtill/Vinyl-Record-Collection-Database/internal/testutil"
	"github.com/bjtill/Vinyl-Record-Collection-Database/internal/tui"
)

func parseCLI(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()

	originalArgs := os.Args
	os.Args = append([]string{"vinyl"}, args...)
	t.Cleanup(func() { os.Args = originalArgs })

	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("vinyl"),
		kong.UsageOnError(),
		kong.Exit(func(code int) {
			t.Fatalf("unexpected Kong exit %d", code)
		}),
	)

	return cli, ctx
}

// newTestApp builds an App against a temp database and a fake Discogs server.
func newTestApp(t *testing.T, fake *testutil.FakeDiscogs) (*App, *bytes.Buffer) {
	t.Helper()

	env := testutil.NewTestEnv(t)
	v := viper.New()
	v.Set("database.path", env.DBPath(""))
	v.Set("discogs.token", "config-token")
	if fake != nil {
		v.Set("discogs.base_url", fake.URL())
	}
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(env.RootDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	var out bytes.Buffer
	app, err := setup(&CLI{}, v, &out)
	require.NoError(t, err)
	return app, &out
}

func nonInteractive(t *testing.T) {
	t.Helper()
	orig := isInteractive
	isInteractive = func() bool { return false }
	t.Cleanup(func() { isInteractive = orig })
}

func nevermind(fake *testutil.FakeDiscogs) map[string]any {
	return map[string]any{
		"id":      367084,
		"artists": []map[string]any{{"name": "Nirvana"}},
		"title":   "Nevermind",
		"year":    1991,
		"labels":  []map[string]any{{"name": "DGC", "catno": "DGC-24425"}},
		"formats": []map[string]any{{"name": "Vinyl", "descriptions": []string{"LP", "Album"}}},
		"images":  []map[string]any{{"uri": fake.ImageURL("front.png")}},
	}
}

func TestCommandParsing(t *testing.T) {
	cli, _ := parseCLI(t, "--db", "/tmp/x.db", "lookup", "barcode", "720642442524", "--save", "--location", "Shelf A")
	assert.Equal(t, "/tmp/x.db", cli.DB)
	assert.Equal(t, "720642442524", cli.Lookup.Barcode.Code)
	assert.True(t, cli.Lookup.Barcode.Save)
	assert.Equal(t, "Shelf A", cli.Lookup.Barcode.Location)

	cli, _ = parseCLI(t, "lookup", "title", "Nevermind", "--no-interactive")
	assert.Equal(t, "Nevermind", cli.Lookup.Title.Query)
	assert.True(t, cli.Lookup.Title.NoInteractive)

	cli, _ = parseCLI(t, "lookup", "release", "367084", "--barcode", "5099")
	assert.Equal(t, 367084, cli.Lookup.Release.ID)
	assert.Equal(t, "5099", cli.Lookup.Release.Barcode)

	cli, _ = parseCLI(t, "records", "list", "--sort-by", "year", "--sort-order", "desc", "-s", "nirv")
	assert.Equal(t, "year", cli.Records.List.SortBy)
	assert.Equal(t, "desc", cli.Records.List.SortOrder)
	assert.Equal(t, "nirv", cli.Records.List.Search)

	cli, _ = parseCLI(t, "serve", "--addr", ":8080")
	assert.Equal(t, ":8080", cli.Serve.Addr)
}

func TestSetup_GlobalFlagsOverrideConfig(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteFileString("vinyl.yaml", "database:\n  path: from-file.db\nlog:\n  level: warn\n")

	var out bytes.Buffer
	app, err := setup(&CLI{Config: env.Path("vinyl.yaml"), DB: env.Path("flag.db"), LogLevel: "debug"}, viper.New(), &out)
	require.NoError(t, err)
	assert.Equal(t, env.Path("flag.db"), app.Config.Database.Path)
	assert.Equal(t, "debug", app.Config.Log.Level)
}

func TestSetup_InvalidConfig(t *testing.T) {
	v := viper.New()
	v.Set("cover.quality", 0)
	_, err := setup(&CLI{}, v, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestAppToken(t *testing.T) {
	app := &App{}
	_, err := app.token("")
	assert.Error(t, err)

	app.Config.Discogs.Token = "configured"
	token, err := app.token("")
	assert.NoError(t, err)
	assert.Equal(t, "configured", token)

	token, err = app.token(" flag ")
	assert.NoError(t, err)
	assert.Equal(t, "flag", token)
}

func TestLookupBarcode_SaveFlow(t *testing.T) {
	fake := testutil.NewFakeDiscogs(t)
	fake.AddBarcode("720642442524", testutil.SearchHit{ID: 367084})
	fake.AddRelease(367084, nevermind(fake))
	app, out := newTestApp(t, fake)

	cmd := &LookupBarcodeCmd{Code: "720642442524", SaveFlags: SaveFlags{Save: true, Location: "Crate 1"}}
	require.NoError(t, cmd.Run(app))

	assert.Contains(t, out.String(), "Nirvana - Nevermind")
	assert.Contains(t, out.String(), "Saved as record 1")
	assert.Equal(t, []string{"config-token", "config-token"}, fake.Tokens())

	store, err := app.openStore(context.Background())
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	rec, err := store.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Crate 1", rec.StorageLocation)
	assert.Equal(t, "720642442524", rec.Barcode)
	assert.True(t, rec.HasCover())
}

func TestLookupBarcode_NoResults(t *testing.T) {
	fake := testutil.NewFakeDiscogs(t)
	app, _ := newTestApp(t, fake)

	err := (&LookupBarcodeCmd{Code: "000"}).Run(app)
	require.Error(t, err)
	assert.IsError(t, err, lookup.ErrNoResults)
}

func TestLookupTitle_NonInteractivePicksFirst(t *testing.T) {
	nonInteractive(t)
	fake := testutil.NewFakeDiscogs(t)
	fake.SetTextHits(testutil.SearchHit{ID: 367084, Title: "Nirvana - Nevermind"}, testutil.SearchHit{ID: 1, Title: "Other"})
	fake.AddRelease(367084, nevermind(fake))
	app, out := newTestApp(t, fake)

	require.NoError(t, (&LookupTitleCmd{Query: "Nevermind", SaveFlags: SaveFlags{Token: "flag-token"}}).Run(app))
	assert.Contains(t, out.String(), "Nirvana - Nevermind")
	assert.Equal(t, 1, fake.ReleaseCalls())
	assert.Equal(t, []string{"flag-token", "flag-token"}, fake.Tokens())
}

func TestLookupTitle_PickerOutcomes(t *testing.T) {
	orig := isInteractive
	isInteractive = func() bool { return true }
	t.Cleanup(func() { isInteractive = orig })

	origSelect := selectCandidate
	t.Cleanup(func() { selectCandidate = origSelect })

	fake := testutil.NewFakeDiscogs(t)
	fake.SetTextHits(testutil.SearchHit{ID: 1, Title: "First"}, testutil.SearchHit{ID: 367084, Title: "Nirvana - Nevermind"})
	fake.AddRelease(367084, nevermind(fake))

	t.Run("selected", func(t *testing.T) {
		selectCandidate = func(_ string, c []lookup.Candidate) (tui.SelectionResult, error) {
			return tui.SelectionResult{Action: tui.ActionSelected, Selection: &c[1]}, nil
		}
		app, out := newTestApp(t, fake)
		require.NoError(t, (&LookupTitleCmd{Query: "Nevermind"}).Run(app))
		assert.Contains(t, out.String(), "DGC-24425")
	})

	t.Run("skipped lists candidates", func(t *testing.T) {
		selectCandidate = func(string, []lookup.Candidate) (tui.SelectionResult, error) {
			return tui.SelectionResult{Action: tui.ActionSkipped}, nil
		}
		app, out := newTestApp(t, fake)
		require.NoError(t, (&LookupTitleCmd{Query: "Nevermind"}).Run(app))
		assert.Contains(t, out.String(), "First")
	})

	t.Run("stopped", func(t *testing.T) {
		selectCandidate = func(string, []lookup.Candidate) (tui.SelectionResult, error) {
			return tui.SelectionResult{Action: tui.ActionStopped}, nil
		}
		app, _ := newTestApp(t, fake)
		err := (&LookupTitleCmd{Query: "Nevermind"}).Run(app)
		assert.True(t, vcerrors.IsStopProcessingError(err))
		assert.Contains(t, err.Error(), "Nevermind")
	})
}

func TestLookupRelease_UpstreamFailure(t *testing.T) {
	fake := testutil.NewFakeDiscogs(t)
	app, _ := newTestApp(t, fake)

	err := (&LookupReleaseCmd{ID: 42}).Run(app)
	assert.IsError(t, err, lookup.ErrFetchFailed)
}

func seedRecords(t *testing.T, app *App, recs ...record.Record) {
	t.Helper()
	store, err := app.openStore(context.Background())
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	for _, r := range recs {
		_, err := store.Create(context.Background(), r)
		require.NoError(t, err)
	}
}

func TestRecordsCommands(t *testing.T) {
	app, out := newTestApp(t, nil)
	year := 1971
	seedRecords(t, app,
		record.Record{Artist: "Can", AlbumTitle: "Tago Mago", Format: "Vinyl", Year: &year},
		record.Record{Artist: "Nirvana", AlbumTitle: "Nevermind", Format: "Vinyl"},
	)

	require.NoError(t, (&RecordsListCmd{Search: "mago", SortBy: "artist", SortOrder: "asc"}).Run(app))
	assert.Contains(t, out.String(), "Tago Mago")
	assert.NotContains(t, out.String(), "Nevermind")

	out.Reset()
	require.NoError(t, (&RecordsShowCmd{ID: 2}).Run(app))
	assert.Contains(t, out.String(), "Nirvana - Nevermind")

	out.Reset()
	require.NoError(t, (&StatsCmd{}).Run(app))
	assert.Contains(t, out.String(), "Records: 2")
	assert.Contains(t, out.String(), "1971")

	out.Reset()
	require.NoError(t, (&RecordsDeleteCmd{ID: 2}).Run(app))
	assert.Contains(t, out.String(), "Deleted record 2")

	err := (&RecordsShowCmd{ID: 2}).Run(app)
	assert.True(t, vcerrors.IsNotFoundError(err))
}

func TestRecordsList_Empty(t *testing.T) {
	app, out := newTestApp(t, nil)
	require.NoError(t, (&RecordsListCmd{}).Run(app))
	assert.True(t, strings.Contains(out.String(), "No records found"))
}

func TestServe_GracefulShutdown(t *testing.T) {
	app, _ := newTestApp(t, nil)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, app, listener) }()

	url := "http://" + listener.Addr().String() + "/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServe_BadDatabase(t *testing.T) {
	app, _ := newTestApp(t, nil)
	app.Config.Database.Path = testutil.NewTestEnv(t).Path("missing", "dir", "db.sqlite")

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	err = serve(context.Background(), app, listener)
	assert.Error(t, err)
}

func TestLookupBatch(t *testing.T) {
	fake := testutil.NewFakeDiscogs(t)
	fake.AddBarcode("720642442524", testutil.SearchHit{ID: 367084})
	fake.AddRelease(367084, nevermind(fake))
	app, out := newTestApp(t, fake)

	env := testutil.NewTestEnv(t)
	env.WriteFileString("shelf.csv", "barcode,storage_location,comments\n720642442524,Crate 2,mint\n000000000000,,\n")

	require.NoError(t, (&LookupBatchCmd{File: env.Path("shelf.csv")}).Run(app))
	assert.Contains(t, out.String(), "2 rows, 1 saved, 1 failed")

	store, err := app.openStore(context.Background())
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	rec, err := store.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Crate 2", rec.StorageLocation)
	assert.Equal(t, "mint", rec.Comments)
}

func TestLookupBatch_DryRun(t *testing.T) {
	fake := testutil.NewFakeDiscogs(t)
	fake.AddBarcode("720642442524", testutil.SearchHit{ID: 367084})
	fake.AddRelease(367084, nevermind(fake))
	app, out := newTestApp(t, fake)

	env := testutil.NewTestEnv(t)
	env.WriteFileString("shelf.csv", "barcode\n720642442524\n")

	require.NoError(t, (&LookupBatchCmd{File: env.Path("shelf.csv"), DryRun: true}).Run(app))
	assert.Contains(t, out.String(), "1 rows, 0 saved, 0 failed")
}
