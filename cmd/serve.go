package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/bjtill/Vinyl-Record-Collection-Database/internal/api"
	"github.com/bjtill/Vinyl-Record-Collection-Database/internal/ratelimit"
)

const shutdownTimeout = 10 * time.Second

// ServeCmd runs the HTTP API.
type ServeCmd struct {
	Addr string `help:"Listen address (overrides server.addr)"`
}

// Run serves until SIGINT or SIGTERM.
func (s *ServeCmd) Run(app *App) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	addr := s.Addr
	if addr == "" {
		addr = app.Config.Server.Addr
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	return serve(ctx, app, listener)
}

// serve runs the API on listener until ctx is cancelled, then shuts down gracefully.
func serve(ctx context.Context, app *App, listener net.Listener) error {
	store, err := app.openStore(ctx)
	if err != nil {
		_ = listener.Close()
		return err
	}
	defer func() { _ = store.Close() }()

	sc := app.Config.Server
	handler := api.NewServer(store, app.lookupService(),
		api.WithDefaultToken(app.Config.Discogs.Token),
		api.WithLookupLimiter(ratelimit.New("lookup", sc.LookupRate)),
		api.WithStaticDir(sc.StaticDir),
		api.WithCORSOrigins(sc.CORSOrigins),
		api.WithLogger(slog.Default()),
	)

	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if sc.TLSEnabled() {
			errCh <- server.ServeTLS(listener, sc.TLSCert, sc.TLSKey)
			return
		}
		errCh <- server.Serve(listener)
	}()

	slog.Info("Vinyl catalog listening",
		"address", listener.Addr().String(),
		"tls", sc.TLSEnabled(),
		"database", app.Config.Database.Path,
	)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
