package cmd

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"

	"github.com/bjtill/Vinyl-Record-Collection-Database/internal/config"
)

// CLI represents the complete command structure for the vinyl application
type CLI struct {
	// Global flags
	Config   string `help:"Path to a YAML config file (defaults to ./config.yaml when present)" type:"path"`
	DB       string `help:"Path to the SQLite collection database (overrides database.path)"`
	LogLevel string `help:"Log level: debug, info, warn or error (overrides log.level)"`

	Serve   ServeCmd   `cmd:"" help:"Run the HTTP API and web client"`
	Lookup  LookupCmd  `cmd:"" help:"Look up releases on Discogs"`
	Records RecordsCmd `cmd:"" help:"Inspect and manage stored records"`
	Stats   StatsCmd   `cmd:"" help:"Show collection statistics"`
}

// App carries the resolved configuration into every command.
type App struct {
	Config config.Config
	Out    io.Writer
}

// Execute runs the Kong-based CLI
func Execute() {
	var cli CLI

	ctx := kong.Parse(&cli,
		kong.Name("vinyl"),
		kong.Description("Catalog a vinyl record collection with metadata from Discogs."),
		kong.UsageOnError(),
	)

	app, err := setup(&cli, viper.GetViper(), os.Stdout)
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := ctx.Run(app); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

// setup reads configuration, applies global flag overrides and installs the
// default logger.
func setup(cli *CLI, v *viper.Viper, out io.Writer) (*App, error) {
	config.SetDefaults(v)
	if err := config.ReadFile(v, cli.Config); err != nil {
		return nil, err
	}
	applyGlobalFlags(cli, v)

	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	initLogging(out, cfg.Log.SlogLevel())
	return &App{Config: cfg, Out: out}, nil
}

func applyGlobalFlags(cli *CLI, v *viper.Viper) {
	if cli.DB != "" {
		v.Set("database.path", cli.DB)
	}
	if cli.LogLevel != "" {
		v.Set("log.level", cli.LogLevel)
	}
}

func initLogging(w io.Writer, level slog.Level) {
	handler := humanlog.NewHandler(w, &humanlog.Options{
		Level: level,
	})

	slog.SetDefault(slog.New(handler))
}
