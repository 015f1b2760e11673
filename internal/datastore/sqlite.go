package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/bjtill/Vinyl-Record-Collection-Database/internal/datastore/migrations"
	vcerrors "github.com/bjtill/Vinyl-Record-Collection-Database/internal/errors"
	"github.com/bjtill/Vinyl-Record-Collection-Database/internal/record"
	"github.com/bjtill/Vinyl-Record-Collection-Database/internal/validation"
)

const pragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"

// goose keeps its base FS and dialect in package state.
var migrateMu sync.Mutex

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements the Store interface for local SQLite storage
type SQLiteStore struct {
	db        *sql.DB
	dbPath    string
	now       func() time.Time
	validator *validation.Validator
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithClock overrides the time source used for date_added and last_modified.
func WithClock(now func() time.Time) Option {
	return func(s *SQLiteStore) {
		s.now = now
	}
}

// NewSQLiteStore creates a new SQLiteStore instance
func NewSQLiteStore(dbPath string, opts ...Option) *SQLiteStore {
	s := &SQLiteStore{
		dbPath:    dbPath,
		now:       time.Now,
		validator: validation.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect opens the SQLite database and brings the schema up to date.
func (s *SQLiteStore) Connect(ctx context.Context) error {
	db, err := sql.Open("sqlite", s.dbPath+"?"+pragmas)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	s.db = db
	slog.Debug("Record store ready", "path", s.dbPath)
	return nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	return gooseUpContext(ctx, db, ".")
}

// Ping checks that the database connection is alive.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if s.db == nil {
		return errors.New("database not connected")
	}
	return s.db.PingContext(ctx)
}

// Create validates and inserts rec, returning the assigned id. Any id or
// timestamps on rec are ignored.
func (s *SQLiteStore) Create(ctx context.Context, rec record.Record) (int64, error) {
	if err := s.validator.Validate(rec); err != nil {
		return 0, err
	}

	now := s.timestamp()
	res, err := s.db.ExecContext(ctx, `INSERT INTO records (
		barcode, discogs_id, artist, album_title, format, format_description,
		release_date, year, country, label, catalog_number, genres, styles,
		cover_image_url, cover_image_data, storage_location, comments,
		date_added, last_modified, discogs_url
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Barcode, rec.DiscogsID, rec.Artist, rec.AlbumTitle, rec.Format, rec.FormatDescription,
		rec.ReleaseDate, rec.Year, rec.Country, rec.Label, rec.CatalogNumber, rec.Genres, rec.Styles,
		rec.CoverImageURL, rec.CoverImageData, rec.StorageLocation, rec.Comments,
		now, now, rec.DiscogsURL,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted id: %w", err)
	}

	slog.Info("Record added", "id", id, "artist", rec.Artist, "title", rec.AlbumTitle)
	return id, nil
}

// Get returns the record with the given id.
func (s *SQLiteStore) Get(ctx context.Context, id int64) (record.Record, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+recordColumns+" FROM records WHERE id = ?", id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return record.Record{}, vcerrors.NewNotFoundError("record", id)
	}
	if err != nil {
		return record.Record{}, fmt.Errorf("failed to load record %d: %w", id, err)
	}
	return rec, nil
}

// Update overwrites every user-visible field of the record and bumps
// last_modified. date_added is preserved.
func (s *SQLiteStore) Update(ctx context.Context, id int64, rec record.Record) error {
	if err := s.validator.Validate(rec); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `UPDATE records SET
		barcode = ?, discogs_id = ?, artist = ?, album_title = ?, format = ?,
		format_description = ?, release_date = ?, year = ?, country = ?, label = ?,
		catalog_number = ?, genres = ?, styles = ?, cover_image_url = ?,
		cover_image_data = ?, storage_location = ?, comments = ?,
		last_modified = ?, discogs_url = ?
	WHERE id = ?`,
		rec.Barcode, rec.DiscogsID, rec.Artist, rec.AlbumTitle, rec.Format,
		rec.FormatDescription, rec.ReleaseDate, rec.Year, rec.Country, rec.Label,
		rec.CatalogNumber, rec.Genres, rec.Styles, rec.CoverImageURL,
		rec.CoverImageData, rec.StorageLocation, rec.Comments,
		s.timestamp(), rec.DiscogsURL,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update record %d: %w", id, err)
	}

	if err := requireAffected(res, id); err != nil {
		return err
	}

	slog.Info("Record updated", "id", id)
	return nil
}

// Delete removes the record with the given id.
func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM records WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete record %d: %w", id, err)
	}

	if err := requireAffected(res, id); err != nil {
		return err
	}

	slog.Info("Record deleted", "id", id)
	return nil
}

// List returns records matching q in the requested order.
func (s *SQLiteStore) List(ctx context.Context, q ListQuery) ([]record.Record, error) {
	query, args := buildListSQL(q)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := []record.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}

	return records, nil
}

// Stats computes collection totals and format/year breakdowns.
func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Formats: []FormatCount{}, Years: []YearCount{}}

	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COUNT(DISTINCT artist) FROM records",
	).Scan(&stats.TotalRecords, &stats.TotalArtists)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to count records: %w", err)
	}

	formatRows, err := s.db.QueryContext(ctx, `SELECT COALESCE(NULLIF(format, ''), 'Unknown') AS fmt, COUNT(*) AS n
		FROM records GROUP BY fmt ORDER BY n DESC, fmt ASC`)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to count formats: %w", err)
	}
	defer func() { _ = formatRows.Close() }()

	for formatRows.Next() {
		var fc FormatCount
		if err := formatRows.Scan(&fc.Format, &fc.Count); err != nil {
			return Stats{}, fmt.Errorf("failed to scan format count: %w", err)
		}
		stats.Formats = append(stats.Formats, fc)
	}
	if err := formatRows.Err(); err != nil {
		return Stats{}, fmt.Errorf("failed to iterate format counts: %w", err)
	}

	yearRows, err := s.db.QueryContext(ctx, `SELECT year, COUNT(*) FROM records
		WHERE year IS NOT NULL GROUP BY year ORDER BY year ASC`)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to count years: %w", err)
	}
	defer func() { _ = yearRows.Close() }()

	for yearRows.Next() {
		var yc YearCount
		if err := yearRows.Scan(&yc.Year, &yc.Count); err != nil {
			return Stats{}, fmt.Errorf("failed to scan year count: %w", err)
		}
		stats.Years = append(stats.Years, yc)
	}
	if err := yearRows.Err(); err != nil {
		return Stats{}, fmt.Errorf("failed to iterate year counts: %w", err)
	}

	return stats, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func requireAffected(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return vcerrors.NewNotFoundError("record", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (record.Record, error) {
	var (
		rec                                                 record.Record
		barcode, discogsID, format, formatDesc, releaseDate sql.NullString
		country, label, catNo, genres, styles, coverURL     sql.NullString
		coverData, location, comments, discogsURL           sql.NullString
		dateAdded, lastModified                             sql.NullString
		year                                                sql.NullInt64
	)

	err := row.Scan(
		&rec.ID, &barcode, &discogsID, &rec.Artist, &rec.AlbumTitle, &format, &formatDesc,
		&releaseDate, &year, &country, &label, &catNo, &genres, &styles,
		&coverURL, &coverData, &location, &comments,
		&dateAdded, &lastModified, &discogsURL,
	)
	if err != nil {
		return record.Record{}, err
	}

	rec.Barcode = barcode.String
	rec.DiscogsID = discogsID.String
	rec.Format = format.String
	rec.FormatDescription = formatDesc.String
	rec.ReleaseDate = releaseDate.String
	rec.Country = country.String
	rec.Label = label.String
	rec.CatalogNumber = catNo.String
	rec.Genres = genres.String
	rec.Styles = styles.String
	rec.CoverImageURL = coverURL.String
	rec.StorageLocation = location.String
	rec.Comments = comments.String
	rec.DiscogsURL = discogsURL.String

	if year.Valid {
		y := int(year.Int64)
		rec.Year = &y
	}
	if coverData.Valid {
		data := coverData.String
		rec.CoverImageData = &data
	}

	if rec.DateAdded, err = parseTimestamp(dateAdded); err != nil {
		return record.Record{}, err
	}
	if rec.LastModified, err = parseTimestamp(lastModified); err != nil {
		return record.Record{}, err
	}

	return rec, nil
}

// legacyTimestampLayouts are zone-less layouts found in older databases,
// interpreted in local time.
var legacyTimestampLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// parseTimestamp returns nil for NULL or empty columns.
func parseTimestamp(value sql.NullString) (*time.Time, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value.String); err == nil {
		return &t, nil
	}
	for _, layout := range legacyTimestampLayouts {
		if t, err := time.ParseInLocation(layout, value.String, time.Local); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid timestamp %q", value.String)
}
