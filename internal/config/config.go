// Package config provides configuration loading and validation for solarmap.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stacklok/solarmap/internal/telemetry"
	"github.com/stacklok/solarmap/internal/versions"
)

const (
	// PasswordEnvVar holds the catalog password when no passwordFile is configured
	PasswordEnvVar = "SOLARMAP_CATALOG_PASSWORD"

	// DefaultCacheTTL is how long downloaded files are reused
	DefaultCacheTTL = 24 * time.Hour

	// DefaultFetchTimeout bounds a single download attempt
	DefaultFetchTimeout = 30 * time.Second

	// DefaultFetchRetries is the number of retries after a failed download
	DefaultFetchRetries = 3

	defaultSSLMode = "require"
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks before the traversal check.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) && !filepath.IsLocal(realPath) {
			return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	// RequiredVersion is a semver constraint the running binary must satisfy, e.g. ">= 1.2"
	RequiredVersion string `yaml:"requiredVersion,omitempty"`

	Cache     CacheConfig       `yaml:"cache"`
	Fetch     FetchConfig       `yaml:"fetch"`
	Catalog   *DatabaseConfig   `yaml:"catalog,omitempty"`
	Telemetry *telemetry.Config `yaml:"telemetry,omitempty"`

	// Overrides are merged into the metadata of every constructed map
	Overrides map[string]any `yaml:"overrides,omitempty"`
}

// CacheConfig controls where and for how long remote files are cached
type CacheConfig struct {
	// Dir defaults to solarmap under the user cache directory
	Dir string `yaml:"dir,omitempty"`

	// TTL is a duration such as "12h". Zero disables reuse.
	TTL string `yaml:"ttl,omitempty"`
}

// FetchConfig controls remote downloads
type FetchConfig struct {
	// Timeout bounds each download attempt, e.g. "30s"
	Timeout string `yaml:"timeout,omitempty"`

	// MaxRetries is the number of retries after a failed attempt
	MaxRetries *uint `yaml:"maxRetries,omitempty"`
}

// DatabaseConfig defines the catalog database connection settings
type DatabaseConfig struct {
	// Host is the database server hostname or IP address
	Host string `yaml:"host"`

	// Port is the database server port
	Port int `yaml:"port"`

	// User is the database username
	User string `yaml:"user"`

	// PasswordFile is the path to a file containing the database password.
	// The file should contain only the password with optional trailing whitespace.
	PasswordFile string `yaml:"passwordFile,omitempty"`

	// Database is the database name
	Database string `yaml:"database"`

	// SSLMode is the SSL mode for the connection (disable, require, verify-ca, verify-full)
	SSLMode string `yaml:"sslMode,omitempty"`

	// MaxOpenConns is the maximum number of open connections to the database
	MaxOpenConns int32 `yaml:"maxOpenConns,omitempty"`

	// MaxIdleConns is the minimum number of idle connections kept in the pool
	MaxIdleConns int32 `yaml:"maxIdleConns,omitempty"`

	// ConnMaxLifetime is the maximum lifetime of a connection (e.g., "1h", "30m")
	ConnMaxLifetime string `yaml:"connMaxLifetime,omitempty"`
}

// GetPassword returns the database password using the following priority:
// 1. Read from PasswordFile if specified
// 2. Read from the SOLARMAP_CATALOG_PASSWORD environment variable
//
// The password from file will have leading/trailing whitespace trimmed.
func (d *DatabaseConfig) GetPassword() (string, error) {
	if d.PasswordFile != "" {
		cleanPath := filepath.Clean(d.PasswordFile)

		data, err := os.ReadFile(cleanPath)
		if err != nil {
			return "", fmt.Errorf("failed to read password from file %s: %w", d.PasswordFile, err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	if envPassword := os.Getenv(PasswordEnvVar); envPassword != "" {
		return envPassword, nil
	}

	return "", fmt.Errorf("no catalog password configured: set passwordFile or %s", PasswordEnvVar)
}

// GetSSLMode returns the configured SSL mode or "require"
func (d *DatabaseConfig) GetSSLMode() string {
	if d.SSLMode == "" {
		return defaultSSLMode
	}
	return d.SSLMode
}

// GetConnectionString builds a PostgreSQL connection URL. The password is URL-escaped.
func (d *DatabaseConfig) GetConnectionString() (string, error) {
	password, err := d.GetPassword()
	if err != nil {
		return "", err
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Database,
		RawQuery: "sslmode=" + url.QueryEscape(d.GetSSLMode()),
	}
	return u.String(), nil
}

// GetConnMaxLifetime parses ConnMaxLifetime, returning zero when unset
func (d *DatabaseConfig) GetConnMaxLifetime() (time.Duration, error) {
	if d.ConnMaxLifetime == "" {
		return 0, nil
	}
	return time.ParseDuration(d.ConnMaxLifetime)
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{}
}

// LoadConfig loads and validates configuration. Without WithConfigPath the defaults are used.
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	config := Default()
	if loaderCfg.path != "" {
		data, err := os.ReadFile(loaderCfg.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// GetCacheDir returns the cache directory, defaulting to solarmap under the user cache directory
func (c *Config) GetCacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user cache directory: %w", err)
	}
	return filepath.Join(base, "solarmap"), nil
}

// GetCacheTTL returns the cache TTL or DefaultCacheTTL
func (c *Config) GetCacheTTL() time.Duration {
	if c.Cache.TTL == "" {
		return DefaultCacheTTL
	}
	// validated on load
	d, _ := time.ParseDuration(c.Cache.TTL)
	return d
}

// GetFetchTimeout returns the per-attempt download timeout or DefaultFetchTimeout
func (c *Config) GetFetchTimeout() time.Duration {
	if c.Fetch.Timeout == "" {
		return DefaultFetchTimeout
	}
	d, _ := time.ParseDuration(c.Fetch.Timeout)
	return d
}

// GetFetchRetries returns the retry count or DefaultFetchRetries
func (c *Config) GetFetchRetries() uint {
	if c.Fetch.MaxRetries == nil {
		return DefaultFetchRetries
	}
	return *c.Fetch.MaxRetries
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := versions.Require(c.RequiredVersion, versions.GetVersionInfo().Version); err != nil {
		return err
	}

	var errs []error
	if c.Cache.TTL != "" {
		if d, err := time.ParseDuration(c.Cache.TTL); err != nil {
			errs = append(errs, fmt.Errorf("cache: invalid ttl %q: %w", c.Cache.TTL, err))
		} else if d < 0 {
			errs = append(errs, fmt.Errorf("cache: ttl must not be negative"))
		}
	}

	if c.Fetch.Timeout != "" {
		if d, err := time.ParseDuration(c.Fetch.Timeout); err != nil {
			errs = append(errs, fmt.Errorf("fetch: invalid timeout %q: %w", c.Fetch.Timeout, err))
		} else if d <= 0 {
			errs = append(errs, fmt.Errorf("fetch: timeout must be positive"))
		}
	}

	if c.Catalog != nil {
		if err := validateDatabaseConfig(c.Catalog, "catalog"); err != nil {
			errs = append(errs, err)
		}
	}

	if err := c.Telemetry.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("telemetry: %w", err))
	}

	for key := range c.Overrides {
		if strings.TrimSpace(key) == "" {
			errs = append(errs, fmt.Errorf("overrides: empty key"))
		}
	}

	return errors.Join(errs...)
}

func validateDatabaseConfig(db *DatabaseConfig, prefix string) error {
	switch {
	case db.Host == "":
		return fmt.Errorf("%s: host is required", prefix)
	case db.Port <= 0 || db.Port > 65535:
		return fmt.Errorf("%s: port must be between 1 and 65535, got %d", prefix, db.Port)
	case db.User == "":
		return fmt.Errorf("%s: user is required", prefix)
	case db.Database == "":
		return fmt.Errorf("%s: database is required", prefix)
	}

	switch db.GetSSLMode() {
	case "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
	default:
		return fmt.Errorf("%s: invalid sslMode %q", prefix, db.SSLMode)
	}

	if _, err := db.GetConnMaxLifetime(); err != nil {
		return fmt.Errorf("%s: invalid connMaxLifetime %q: %w", prefix, db.ConnMaxLifetime, err)
	}
	if db.MaxIdleConns > 0 && db.MaxOpenConns > 0 && db.MaxIdleConns > db.MaxOpenConns {
		return fmt.Errorf("%s: maxIdleConns (%d) exceeds maxOpenConns (%d)", prefix, db.MaxIdleConns, db.MaxOpenConns)
	}
	return nil
}
