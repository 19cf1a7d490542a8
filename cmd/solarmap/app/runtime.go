package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/viper"

	"github.com/stacklok/solarmap/internal/catalog"
	"github.com/stacklok/solarmap/internal/config"
	"github.com/stacklok/solarmap/internal/db"
	"github.com/stacklok/solarmap/internal/factory"
	"github.com/stacklok/solarmap/internal/fetch"
	"github.com/stacklok/solarmap/internal/httpclient"
	"github.com/stacklok/solarmap/internal/maps"
	"github.com/stacklok/solarmap/internal/maps/sources"
	"github.com/stacklok/solarmap/internal/meta"
	"github.com/stacklok/solarmap/internal/resolve"
	"github.com/stacklok/solarmap/internal/telemetry"
	"github.com/stacklok/solarmap/internal/versions"
	"github.com/stacklok/solarmap/internal/wcs"
)

const shutdownTimeout = 5 * time.Second

// errCatalogNotConfigured is returned when a command needs the catalog but the config has none
var errCatalogNotConfigured = errors.New("catalog is not configured")

// runtime wires the collaborators one command invocation needs
type runtime struct {
	cfg       *config.Config
	telemetry *telemetry.Telemetry
	registry  *maps.Registry
	factory   *factory.Factory
	store     *catalog.Store
	pool      *pgxpool.Pool
	logger    *slog.Logger
}

func loadConfig(v *viper.Viper) (*config.Config, error) {
	var opts []config.Option
	if path := v.GetString("config"); path != "" {
		opts = append(opts, config.WithConfigPath(path))
	}
	cfg, err := config.LoadConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newRuntime builds the factory and its collaborators. The catalog is connected only when withCatalog is set.
func newRuntime(ctx context.Context, v *viper.Viper, withCatalog bool) (rt *runtime, err error) {
	cfg, err := loadConfig(v)
	if err != nil {
		return nil, err
	}

	rt = &runtime{cfg: cfg, logger: slog.Default()}
	defer func() {
		if err != nil {
			rt.Close()
		}
	}()

	if cfg.Telemetry != nil && cfg.Telemetry.ServiceVersion == "" {
		cfg.Telemetry.ServiceVersion = versions.GetVersionInfo().Version
	}
	rt.telemetry, err = telemetry.New(ctx, cfg.Telemetry)
	if err != nil {
		return nil, err
	}
	tp := rt.telemetry.TracerProvider()
	mp := rt.telemetry.MeterProvider()

	rt.registry, err = sources.NewRegistry(maps.WithRegistryLogger(rt.logger))
	if err != nil {
		return nil, err
	}

	cacheDir, err := cfg.GetCacheDir()
	if err != nil {
		return nil, err
	}
	fetcher, err := fetch.New(cacheDir,
		fetch.WithClient(httpclient.NewDefaultClient(cfg.GetFetchTimeout())),
		fetch.WithTTL(cfg.GetCacheTTL()),
		fetch.WithMaxRetries(cfg.GetFetchRetries()),
		fetch.WithTracerProvider(tp),
		fetch.WithMeterProvider(mp),
		fetch.WithLogger(rt.logger),
	)
	if err != nil {
		return nil, err
	}

	resolverOpts := []resolve.Option{
		resolve.WithFetcher(fetcher),
		resolve.WithDescriptorConverter(wcs.NewConverter()),
		resolve.WithLogger(rt.logger),
	}

	if withCatalog {
		if cfg.Catalog == nil {
			return nil, errCatalogNotConfigured
		}
		rt.pool, err = db.Connect(ctx, cfg.Catalog, rt.logger)
		if err != nil {
			return nil, err
		}
		rt.store, err = catalog.New(rt.pool,
			catalog.WithRegistry(rt.registry),
			catalog.WithTracerProvider(tp),
			catalog.WithLogger(rt.logger),
		)
		if err != nil {
			return nil, err
		}
		resolverOpts = append(resolverOpts, resolve.WithRecordResolver(rt.store))
	}

	rt.factory, err = factory.New(
		factory.WithRegistry(rt.registry),
		factory.WithResolver(resolve.New(resolverOpts...)),
		factory.WithTracerProvider(tp),
		factory.WithMeterProvider(mp),
		factory.WithLogger(rt.logger),
	)
	if err != nil {
		return nil, err
	}
	return rt, nil
}

// Close releases the catalog pool and flushes telemetry
func (rt *runtime) Close() {
	if rt.pool != nil {
		rt.pool.Close()
	}
	if rt.telemetry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := rt.telemetry.Shutdown(ctx); err != nil {
			rt.logger.Warn("Failed to flush telemetry", "error", err)
		}
	}
}

// options merges configured overrides with command line ones, which win
func (rt *runtime) options(flags factory.Options, cliOverrides map[string]any) factory.Options {
	overrides := make(map[string]any, len(rt.cfg.Overrides)+len(cliOverrides))
	for k, val := range rt.cfg.Overrides {
		overrides[meta.NormalizeKey(k)] = val
	}
	for k, val := range cliOverrides {
		overrides[meta.NormalizeKey(k)] = val
	}
	if len(overrides) > 0 {
		flags.Overrides = overrides
	}
	return flags
}
