// Package config loads application settings through viper.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every runtime setting of the application.
type Config struct {
	Discogs  DiscogsConfig
	Cover    CoverConfig
	Database DatabaseConfig
	Server   ServerConfig
	Log      LogConfig
}

// DiscogsConfig configures the metadata client.
type DiscogsConfig struct {
	BaseURL   string
	UserAgent string
	// Token is used when a request does not carry its own.
	Token   string
	Timeout time.Duration
	// RateLimit is the allowed outgoing requests per second. Zero disables throttling.
	RateLimit int
}

// CoverConfig configures the cover image fetcher.
type CoverConfig struct {
	Timeout      time.Duration
	MaxDimension int
	Quality      int
}

// DatabaseConfig configures the record store.
type DatabaseConfig struct {
	Path string
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr        string
	StaticDir   string
	CORSOrigins []string
	// LookupRate is the allowed lookup requests per second. Zero disables throttling.
	LookupRate int
	TLSCert    string
	TLSKey     string
}

// TLSEnabled reports whether both certificate and key are configured.
func (s ServerConfig) TLSEnabled() bool {
	return s.TLSCert != "" && s.TLSKey != ""
}

// LogConfig configures logging.
type LogConfig struct {
	Level string
}

// SlogLevel maps the configured level name to a slog.Level.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetDefaults registers default values and environment bindings on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("discogs.base_url", "https://api.discogs.com")
	v.SetDefault("discogs.user_agent", "VinylCollectionApp/1.0")
	v.SetDefault("discogs.token", "")
	v.SetDefault("discogs.timeout", "10s")
	v.SetDefault("discogs.rate_limit", 0)

	v.SetDefault("cover.timeout", "10s")
	v.SetDefault("cover.max_dimension", 800)
	v.SetDefault("cover.quality", 85)

	v.SetDefault("database.path", "vinyl_collection.db")

	v.SetDefault("server.addr", ":5000")
	v.SetDefault("server.static_dir", "")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.lookup_rate", 0)
	v.SetDefault("server.tls_cert", "")
	v.SetDefault("server.tls_key", "")

	v.SetDefault("log.level", "info")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("discogs.token", "DISCOGS_TOKEN")
	_ = v.BindEnv("database.path", "VINYL_DB_PATH")
}

// ReadFile reads an explicit config file, or an optional config.yaml from the
// working directory when file is empty.
func ReadFile(v *viper.Viper, file string) error {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	slog.Debug("Loaded config file", "path", v.ConfigFileUsed())
	return nil
}

// Load builds a Config from v and validates it.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Discogs: DiscogsConfig{
			BaseURL:   v.GetString("discogs.base_url"),
			UserAgent: v.GetString("discogs.user_agent"),
			Token:     v.GetString("discogs.token"),
			Timeout:   v.GetDuration("discogs.timeout"),
			RateLimit: v.GetInt("discogs.rate_limit"),
		},
		Cover: CoverConfig{
			Timeout:      v.GetDuration("cover.timeout"),
			MaxDimension: v.GetInt("cover.max_dimension"),
			Quality:      v.GetInt("cover.quality"),
		},
		Database: DatabaseConfig{
			Path: v.GetString("database.path"),
		},
		Server: ServerConfig{
			Addr:        v.GetString("server.addr"),
			StaticDir:   v.GetString("server.static_dir"),
			CORSOrigins: v.GetStringSlice("server.cors_origins"),
			LookupRate:  v.GetInt("server.lookup_rate"),
			TLSCert:     v.GetString("server.tls_cert"),
			TLSKey:      v.GetString("server.tls_key"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Database.Path == "" {
		return errors.New("database.path must not be empty")
	}
	if c.Discogs.Timeout <= 0 {
		return fmt.Errorf("discogs.timeout must be positive, got %s", c.Discogs.Timeout)
	}
	if c.Cover.Timeout <= 0 {
		return fmt.Errorf("cover.timeout must be positive, got %s", c.Cover.Timeout)
	}
	if c.Cover.MaxDimension <= 0 {
		return fmt.Errorf("cover.max_dimension must be positive, got %d", c.Cover.MaxDimension)
	}
	if c.Cover.Quality < 1 || c.Cover.Quality > 100 {
		return fmt.Errorf("cover.quality must be between 1 and 100, got %d", c.Cover.Quality)
	}
	if c.Discogs.RateLimit < 0 {
		return fmt.Errorf("discogs.rate_limit must not be negative, got %d", c.Discogs.RateLimit)
	}
	if c.Server.LookupRate < 0 {
		return fmt.Errorf("server.lookup_rate must not be negative, got %d", c.Server.LookupRate)
	}
	if (c.Server.TLSCert == "") != (c.Server.TLSKey == "") {
		return errors.New("server.tls_cert and server.tls_key must be set together")
	}
	return nil
}
