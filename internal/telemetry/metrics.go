package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// FactoryMeterName is the meter used by the map factory
	FactoryMeterName = "github.com/stacklok/solarmap/factory"

	// FetchMeterName is the meter used by the remote fetcher
	FetchMeterName = "github.com/stacklok/solarmap/fetch"
)

// FactoryMetrics holds the map factory instruments. A nil *FactoryMetrics records nothing.
type FactoryMetrics struct {
	mapsConstructed   metric.Int64Counter
	constructDuration metric.Float64Histogram
}

// NewFactoryMetrics creates the factory instruments. A nil provider yields nil metrics.
func NewFactoryMetrics(provider metric.MeterProvider) (*FactoryMetrics, error) {
	if provider == nil {
		return nil, nil
	}
	meter := provider.Meter(FactoryMeterName)

	mapsConstructed, err := meter.Int64Counter(
		"solarmap_maps_constructed_total",
		metric.WithDescription("Number of maps constructed, by concrete type"),
		metric.WithUnit("{map}"),
	)
	if err != nil {
		return nil, err
	}

	constructDuration, err := meter.Float64Histogram(
		"solarmap_construct_duration_seconds",
		metric.WithDescription("Duration of factory construct calls in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30),
	)
	if err != nil {
		return nil, err
	}

	return &FactoryMetrics{
		mapsConstructed:   mapsConstructed,
		constructDuration: constructDuration,
	}, nil
}

// RecordMapConstructed counts one constructed map of the given kind
func (m *FactoryMetrics) RecordMapConstructed(ctx context.Context, kind string) {
	if m == nil || m.mapsConstructed == nil {
		return
	}
	m.mapsConstructed.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordConstructDuration records how long a construct call took
func (m *FactoryMetrics) RecordConstructDuration(ctx context.Context, mode string, duration time.Duration, success bool) {
	if m == nil || m.constructDuration == nil {
		return
	}
	m.constructDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("mode", mode),
		attribute.Bool("success", success),
	))
}

// FetchMetrics holds the remote fetch instruments. A nil *FetchMetrics records nothing.
type FetchMetrics struct {
	requests metric.Int64Counter
}

// NewFetchMetrics creates the fetch instruments. A nil provider yields nil metrics.
func NewFetchMetrics(provider metric.MeterProvider) (*FetchMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	requests, err := provider.Meter(FetchMeterName).Int64Counter(
		"solarmap_fetch_requests_total",
		metric.WithDescription("Remote fetches by outcome (hit, download, error)"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}
	return &FetchMetrics{requests: requests}, nil
}

// RecordFetch counts one fetch with its outcome
func (m *FetchMetrics) RecordFetch(ctx context.Context, outcome string) {
	if m == nil || m.requests == nil {
		return
	}
	m.requests.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
