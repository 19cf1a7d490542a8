// Package factory builds classified maps from heterogeneous inputs.
//
// A construct call resolves its arguments into sources, reads file sources
// into metadata pairs, applies metadata overrides, classifies each pair
// against the source registry and finally aggregates the resulting maps into
// a single map, a list, a sequence or a composite.
package factory

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/solarmap/internal/fitsfile"
	"github.com/stacklok/solarmap/internal/maps"
	"github.com/stacklok/solarmap/internal/maps/sources"
	"github.com/stacklok/solarmap/internal/meta"
	"github.com/stacklok/solarmap/internal/otel"
	"github.com/stacklok/solarmap/internal/resolve"
	"github.com/stacklok/solarmap/internal/telemetry"
	"github.com/stacklok/solarmap/internal/wcs"
)

// TracerName is the instrumentation scope of factory spans
const TracerName = "github.com/stacklok/solarmap/factory"

// Reader reads a file into one pair per image, in file order
type Reader interface {
	Read(path string) ([]meta.Pair, error)
}

// Options control a single construct call
type Options struct {
	// Sequence wraps the result in a date-sorted maps.Sequence
	Sequence bool
	// Composite wraps the result in a maps.Composite
	Composite bool
	// Overrides are written into every resolved pair's metadata before classification
	Overrides map[string]any
	// AllowEmpty returns an empty list instead of ErrEmptyInput
	AllowEmpty bool
}

func (o Options) mode() (Mode, error) {
	switch {
	case o.Sequence && o.Composite:
		return ModeAuto, ErrConflictingMode
	case o.Sequence:
		return ModeSequence, nil
	case o.Composite:
		return ModeComposite, nil
	default:
		return ModeAuto, nil
	}
}

// Factory constructs maps. It is safe for concurrent use once built.
type Factory struct {
	registry *maps.Registry
	resolver *resolve.Resolver
	reader   Reader
	tracer   trace.Tracer
	metrics  *telemetry.FactoryMetrics
	logger   *slog.Logger

	meterProvider metric.MeterProvider
}

// Option configures a Factory
type Option func(*Factory)

// WithRegistry sets the source registry. It is sealed when the factory is built.
func WithRegistry(reg *maps.Registry) Option {
	return func(f *Factory) {
		f.registry = reg
	}
}

// WithResolver sets the input resolver
func WithResolver(r *resolve.Resolver) Option {
	return func(f *Factory) {
		f.resolver = r
	}
}

// WithReader sets the file reader
func WithReader(r Reader) Option {
	return func(f *Factory) {
		f.reader = r
	}
}

// WithTracerProvider enables tracing of construct calls
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(f *Factory) {
		if tp != nil {
			f.tracer = tp.Tracer(TracerName)
		}
	}
}

// WithMeterProvider enables factory metrics
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(f *Factory) {
		f.meterProvider = mp
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(f *Factory) {
		f.logger = logger
	}
}

// New builds a Factory. By default it classifies against every instrument
// source, reads FITS files and converts wcs descriptors.
func New(opts ...Option) (*Factory, error) {
	f := &Factory{logger: slog.Default()}
	for _, opt := range opts {
		opt(f)
	}

	if f.registry == nil {
		reg, err := sources.NewRegistry(maps.WithRegistryLogger(f.logger))
		if err != nil {
			return nil, fmt.Errorf("failed to build source registry: %w", err)
		}
		f.registry = reg
	}
	f.registry.Seal()

	if f.resolver == nil {
		f.resolver = resolve.New(
			resolve.WithLogger(f.logger),
			resolve.WithDescriptorConverter(wcs.NewConverter()),
		)
	}
	if f.reader == nil {
		f.reader = fitsfile.NewReader(f.logger)
	}

	metrics, err := telemetry.NewFactoryMetrics(f.meterProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create factory metrics: %w", err)
	}
	f.metrics = metrics

	return f, nil
}

// Registry returns the sealed source registry
func (f *Factory) Registry() *maps.Registry {
	return f.registry
}

// Map constructs with default options
func (f *Factory) Map(ctx context.Context, args ...any) (*Result, error) {
	return f.Construct(ctx, Options{}, args...)
}

// Construct resolves args, builds one map per pair and aggregates them.
// Any failure aborts the call; no partial result is returned.
func (f *Factory) Construct(ctx context.Context, opts Options, args ...any) (result *Result, err error) {
	start := time.Now()

	mode, err := opts.mode()
	if err != nil {
		return nil, err
	}

	ctx, span := otel.StartSpan(ctx, f.tracer, "factory.construct",
		trace.WithAttributes(
			otel.AttrArgumentCount.Int(len(args)),
			otel.AttrMode.String(mode.String()),
		))
	defer func() {
		otel.RecordError(span, err)
		span.End()
		f.metrics.RecordConstructDuration(ctx, mode.String(), time.Since(start), err == nil)
	}()

	srcs, err := f.resolver.Resolve(ctx, args...)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(otel.AttrSourceCount.Int(len(srcs)))

	items, err := f.build(ctx, srcs, opts.Overrides)
	if err != nil {
		return nil, err
	}

	result, err = Aggregate(items, mode, opts.AllowEmpty)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(otel.AttrResultKind.String(result.Kind().String()))

	f.logger.Debug("Constructed maps",
		"arguments", len(args),
		"sources", len(srcs),
		"maps", result.Len(),
		"result", result.Kind().String())
	return result, nil
}

func (f *Factory) build(ctx context.Context, srcs []resolve.Source, overrides map[string]any) ([]maps.Map, error) {
	items := make([]maps.Map, 0, len(srcs))
	for _, src := range srcs {
		switch src.Kind {
		case resolve.SourceMap:
			items = append(items, src.Map)

		case resolve.SourcePair:
			items = append(items, f.classify(ctx, src.Pair, overrides))

		case resolve.SourceFile:
			pairs, err := f.reader.Read(src.Path)
			if err != nil {
				return nil, err
			}
			for _, pair := range pairs {
				items = append(items, f.classify(ctx, pair, overrides))
			}

		default:
			return nil, fmt.Errorf("unexpected source kind %s", src.Kind)
		}
	}
	return items, nil
}

func (f *Factory) classify(ctx context.Context, pair meta.Pair, overrides map[string]any) maps.Map {
	if len(overrides) > 0 {
		pair.Meta = pair.Meta.Clone()
		pair.Meta.Merge(overrides)
	}
	m := f.registry.Build(pair)
	f.metrics.RecordMapConstructed(ctx, m.Kind())
	return m
}
