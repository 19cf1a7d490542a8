// Package catalog keeps an index of observation files in PostgreSQL.
//
// Each catalog row points at one image of a file on disk. An Entry handle
// can be passed to the factory like any other input, and the store resolves
// it back into the image's data and metadata.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/solarmap/internal/fitsfile"
	"github.com/stacklok/solarmap/internal/maps"
	"github.com/stacklok/solarmap/internal/maps/sources"
	"github.com/stacklok/solarmap/internal/meta"
	"github.com/stacklok/solarmap/internal/otel"
	"github.com/stacklok/solarmap/internal/resolve"
)

// TracerName is the instrumentation scope of catalog spans
const TracerName = "github.com/stacklok/solarmap/catalog"

var (
	// ErrRecordNotFound is returned when no row has the requested id
	ErrRecordNotFound = errors.New("catalog record not found")

	// ErrNotAnEntry is returned when Resolve is given something other than an Entry
	ErrNotAnEntry = errors.New("not a catalog entry")

	// ErrHDUOutOfRange is returned when a file has fewer images than a record expects
	ErrHDUOutOfRange = errors.New("image index out of range")
)

const (
	insertObservation = `INSERT INTO observation
    (path, hdu, kind, instrument, observatory, wavelength, exposure, observed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (path, hdu) DO UPDATE SET
    kind = EXCLUDED.kind,
    instrument = EXCLUDED.instrument,
    observatory = EXCLUDED.observatory,
    wavelength = EXCLUDED.wavelength,
    exposure = EXCLUDED.exposure,
    observed_at = EXCLUDED.observed_at,
    updated_at = now()
RETURNING id`

	selectObservation = `SELECT id, path, hdu, kind, instrument, observatory, wavelength, exposure, observed_at, created_at
FROM observation
WHERE id = $1`

	deleteObservation = `DELETE FROM observation WHERE id = $1`
)

// Querier is the subset of pgx used by the store. *pgxpool.Pool and pgx.Tx satisfy it.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Reader reads a file into one pair per image
type Reader interface {
	Read(path string) ([]meta.Pair, error)
}

// Entry is a handle to a catalog row
type Entry struct {
	ID int64
}

// Record is a catalog row
type Record struct {
	Entry
	Path        string
	HDU         int
	Kind        string
	Instrument  string
	Observatory string
	Wavelength  *float64
	Exposure    Exposure
	ObservedAt  *time.Time
	CreatedAt   time.Time
}

// Store reads and writes catalog rows. It implements resolve.RecordResolver.
type Store struct {
	q        Querier
	reader   Reader
	registry *maps.Registry
	tracer   trace.Tracer
	logger   *slog.Logger
}

var _ resolve.RecordResolver = (*Store)(nil)

// Option configures a Store
type Option func(*Store)

// WithReader sets the file reader
func WithReader(r Reader) Option {
	return func(s *Store) {
		s.reader = r
	}
}

// WithRegistry sets the registry used to classify added files
func WithRegistry(reg *maps.Registry) Option {
	return func(s *Store) {
		s.registry = reg
	}
}

// WithTracerProvider enables tracing of store operations
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Store) {
		if tp != nil {
			s.tracer = tp.Tracer(TracerName)
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a Store over q
func New(q Querier, opts ...Option) (*Store, error) {
	s := &Store{q: q, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	if s.reader == nil {
		s.reader = fitsfile.NewReader(s.logger)
	}
	if s.registry == nil {
		reg, err := sources.NewRegistry(maps.WithRegistryLogger(s.logger))
		if err != nil {
			return nil, fmt.Errorf("failed to build source registry: %w", err)
		}
		s.registry = reg
	}
	return s, nil
}

// Add catalogs the first image of the file at path
func (s *Store) Add(ctx context.Context, path string) (Entry, error) {
	return s.AddHDU(ctx, path, 0)
}

// AddHDU catalogs image hdu of the file at path. Adding the same image again
// refreshes its row and keeps its id.
func (s *Store) AddHDU(ctx context.Context, path string, hdu int) (entry Entry, err error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "catalog.add")
	defer func() {
		otel.RecordError(span, err)
		span.End()
	}()

	abs, err := filepath.Abs(path)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	pairs, err := s.reader.Read(abs)
	if err != nil {
		return Entry{}, err
	}
	if hdu < 0 || hdu >= len(pairs) {
		return Entry{}, fmt.Errorf("%w: %s has %d images, wanted %d", ErrHDUOutOfRange, abs, len(pairs), hdu)
	}

	m := s.registry.Build(pairs[hdu])
	var wavelength *float64
	if w, ok := m.Wavelength(); ok {
		wavelength = &w
	}
	exposure := Exposure{}
	if seconds, ok := m.Meta().Float("exptime"); ok {
		exposure = ExposureFromSeconds(seconds)
	}
	var observedAt *time.Time
	if t, ok := m.Date(); ok {
		observedAt = &t
	}

	err = s.q.QueryRow(ctx, insertObservation,
		abs, hdu, m.Kind(), m.Instrument(), m.Observatory(), wavelength, exposure, observedAt,
	).Scan(&entry.ID)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to insert observation: %w", err)
	}

	span.SetAttributes(otel.AttrRecordID.Int64(entry.ID), otel.AttrMapKind.String(m.Kind()))
	s.logger.Info("Cataloged observation", "id", entry.ID, "path", abs, "hdu", hdu, "kind", m.Kind())
	return entry, nil
}

// Get returns the row with the given id
func (s *Store) Get(ctx context.Context, id int64) (*Record, error) {
	rec := &Record{}
	err := s.q.QueryRow(ctx, selectObservation, id).Scan(
		&rec.ID,
		&rec.Path,
		&rec.HDU,
		&rec.Kind,
		&rec.Instrument,
		&rec.Observatory,
		&rec.Wavelength,
		&rec.Exposure,
		&rec.ObservedAt,
		&rec.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrRecordNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query observation %d: %w", id, err)
	}
	return rec, nil
}

// Remove deletes the row with the given id
func (s *Store) Remove(ctx context.Context, id int64) error {
	tag, err := s.q.Exec(ctx, deleteObservation, id)
	if err != nil {
		return fmt.Errorf("failed to delete observation %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: id %d", ErrRecordNotFound, id)
	}
	return nil
}

// Accepts reports whether v is an Entry or a non-nil *Entry
func (*Store) Accepts(v any) bool {
	_, ok := asEntry(v)
	return ok
}

// Resolve reads the image a catalog entry points at
func (s *Store) Resolve(ctx context.Context, v any) (pair meta.Pair, err error) {
	entry, ok := asEntry(v)
	if !ok {
		return meta.Pair{}, fmt.Errorf("%w: %T", ErrNotAnEntry, v)
	}

	ctx, span := otel.StartSpan(ctx, s.tracer, "catalog.resolve",
		trace.WithAttributes(otel.AttrRecordID.Int64(entry.ID)))
	defer func() {
		otel.RecordError(span, err)
		span.End()
	}()

	rec, err := s.Get(ctx, entry.ID)
	if err != nil {
		return meta.Pair{}, err
	}

	pairs, err := s.reader.Read(rec.Path)
	if err != nil {
		return meta.Pair{}, err
	}
	if rec.HDU >= len(pairs) {
		return meta.Pair{}, fmt.Errorf("%w: %s has %d images, record %d wants %d",
			ErrHDUOutOfRange, rec.Path, len(pairs), rec.ID, rec.HDU)
	}

	s.logger.Debug("Resolved catalog entry", "id", rec.ID, "path", rec.Path, "hdu", rec.HDU)
	return pairs[rec.HDU], nil
}

func asEntry(v any) (Entry, bool) {
	switch e := v.(type) {
	case Entry:
		return e, true
	case *Entry:
		if e == nil {
			return Entry{}, false
		}
		return *e, true
	default:
		return Entry{}, false
	}
}
