package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/bjtill/Vinyl-Record-Collection-Database/internal/cover"
	"github.com/bjtill/Vinyl-Record-Collection-Database/internal/datastore"
	"github.com/bjtill/Vinyl-Record-Collection-Database/internal/discogs"
	"github.com/bjtill/Vinyl-Record-Collection-Database/internal/lookup"
	"github.com/bjtill/Vinyl-Record-Collection-Database/internal/ratelimit"
)

// openStore connects to the configured collection database.
func (a *App) openStore(ctx context.Context) (*datastore.SQLiteStore, error) {
	store := datastore.NewSQLiteStore(a.Config.Database.Path)
	if err := store.Connect(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// lookupService wires the Discogs client and cover fetcher from config.
func (a *App) lookupService() *lookup.Service {
	dc := a.Config.Discogs
	client := discogs.NewClient(
		discogs.Config{BaseURL: dc.BaseURL, UserAgent: dc.UserAgent, Timeout: dc.Timeout},
		discogs.WithRateLimiter(ratelimit.New("discogs", dc.RateLimit)),
	)

	cc := a.Config.Cover
	covers := cover.NewFetcher(
		cover.WithTimeout(cc.Timeout),
		cover.WithMaxDimension(cc.MaxDimension),
		cover.WithQuality(cc.Quality),
	)

	return lookup.NewService(client, covers)
}

// token prefers the flag value and falls back to discogs.token.
func (a *App) token(flag string) (string, error) {
	if t := strings.TrimSpace(flag); t != "" {
		return t, nil
	}
	if a.Config.Discogs.Token != "" {
		return a.Config.Discogs.Token, nil
	}
	return "", fmt.Errorf("a Discogs token is required (provide via --token, DISCOGS_TOKEN or discogs.token in config)")
}
