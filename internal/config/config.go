// Package config loads sqlquery settings from defaults, an optional YAML
// file and SQLQUERY_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"go.opentelemetry.io/otel"

	"github.com/coregx/sqlquery/internal/cache"
	"github.com/coregx/sqlquery/internal/core"
	"github.com/coregx/sqlquery/internal/dialects"
	"github.com/coregx/sqlquery/internal/security"
	"github.com/coregx/sqlquery/internal/tracer"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "SQLQUERY_"

// TracerName is the instrumentation name of query spans.
const TracerName = "github.com/coregx/sqlquery"

// PathEnvVar names the environment variable holding the config file path.
const PathEnvVar = EnvPrefix + "CONFIG"

// DefaultPaths are searched in order when no path is given.
var DefaultPaths = []string{
	"sqlquery.yaml",
	"sqlquery.yml",
}

// sections are the nested config keys. SQLQUERY_DATABASE_DSN maps to
// database.dsn; everything else maps to a top-level key.
var sections = []string{"database", "log"}

// Config holds every setting.
type Config struct {
	// ClearAfterExecution resets queries after each successful execution.
	ClearAfterExecution bool           `koanf:"clear_after_execution"`
	Database            DatabaseConfig `koanf:"database"`
	Log                 LogConfig      `koanf:"log"`
	// SensitiveFields are masked in trace logs. Empty uses the defaults.
	SensitiveFields []string `koanf:"sensitive_fields"`
	// Validation rejects unsafe statements: "off", "default" or "strict".
	Validation string `koanf:"validation"`
	// Tracing opens a span per query on the global OpenTelemetry provider.
	Tracing bool `koanf:"tracing"`
}

// DatabaseConfig configures the connection pool.
type DatabaseConfig struct {
	Driver string `koanf:"driver"`
	DSN    string `koanf:"dsn"`
	// Dialect overrides the dialect derived from Driver.
	Dialect             string        `koanf:"dialect"`
	MaxOpenConns        int           `koanf:"max_open_conns"`
	MaxIdleConns        int           `koanf:"max_idle_conns"`
	StmtCacheCapacity   int           `koanf:"stmt_cache_capacity"`
	HealthCheckInterval time.Duration `koanf:"health_check_interval"`
}

// LogConfig configures the zerolog logger.
type LogConfig struct {
	Level string `koanf:"level"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:            "sqlite",
			DSN:               ":memory:",
			MaxOpenConns:      10,
			MaxIdleConns:      2,
			StmtCacheCapacity: cache.DefaultStmtCacheCapacity,
		},
		Log:        LogConfig{Level: "info"},
		Validation: "default",
	}
}

// Load layers defaults, the YAML file at path and the environment. An empty
// path uses $SQLQUERY_CONFIG or the first of DefaultPaths that exists; a
// missing default file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = findFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Comma-separated lists arrive from the environment as one string.
	if raw, ok := k.Get("sensitive_fields").(string); ok {
		if err := k.Set("sensitive_fields", splitList(raw)); err != nil {
			return nil, fmt.Errorf("failed to parse sensitive_fields: %w", err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findFile() string {
	if path := os.Getenv(PathEnvVar); path != "" {
		return path
	}
	for _, path := range DefaultPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envKey maps SQLQUERY_DATABASE_MAX_OPEN_CONNS to database.max_open_conns.
func envKey(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	for _, section := range sections {
		if rest, ok := strings.CutPrefix(key, section+"_"); ok {
			return section + "." + rest
		}
	}
	return key
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks that the database can be opened with these settings.
func (c *Config) Validate() error {
	var errs []error
	if c.Database.Driver == "" {
		errs = append(errs, errors.New("database.driver is required"))
	}
	if c.Database.MaxOpenConns < 0 {
		errs = append(errs, errors.New("database.max_open_conns must not be negative"))
	}
	if c.Database.MaxIdleConns < 0 {
		errs = append(errs, errors.New("database.max_idle_conns must not be negative"))
	}
	if c.Database.HealthCheckInterval < 0 {
		errs = append(errs, errors.New("database.health_check_interval must not be negative"))
	}
	switch c.Validation {
	case "", "off", "default", "strict":
	default:
		errs = append(errs, fmt.Errorf("validation must be off, default or strict, got %q", c.Validation))
	}
	if _, err := c.Dialect(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Dialect returns the configured dialect, falling back to the one
// registered for the driver.
func (c *Config) Dialect() (dialects.Dialect, error) {
	name := c.Database.Dialect
	if name == "" {
		name = c.Database.Driver
	}
	return dialects.Lookup(name)
}

// Options implements core.ConfigProvider.
func (c *Config) Options() (*core.Options, error) {
	return &core.Options{IsClearAfterExecution: c.ClearAfterExecution}, nil
}

// DBOptions translates the database settings into core options. The
// config itself becomes the query options provider.
func (c *Config) DBOptions() ([]core.Option, error) {
	d, err := c.Dialect()
	if err != nil {
		return nil, err
	}
	opts := []core.Option{
		core.WithDialect(d),
		core.WithOptionsProvider(c),
		core.WithStmtCacheCapacity(c.Database.StmtCacheCapacity),
	}
	if c.Database.MaxOpenConns > 0 {
		opts = append(opts, core.WithMaxOpenConns(c.Database.MaxOpenConns))
	}
	if c.Database.MaxIdleConns > 0 {
		opts = append(opts, core.WithMaxIdleConns(c.Database.MaxIdleConns))
	}
	if c.Database.HealthCheckInterval > 0 {
		opts = append(opts, core.WithHealthCheck(c.Database.HealthCheckInterval))
	}
	if len(c.SensitiveFields) > 0 {
		opts = append(opts, core.WithSensitiveFields(c.SensitiveFields...))
	}
	if c.Tracing {
		opts = append(opts, core.WithTracing(tracer.NewOtelTracer(otel.Tracer(TracerName))))
	}
	switch c.Validation {
	case "default":
		opts = append(opts, core.WithQueryValidator(security.NewValidator()))
	case "strict":
		opts = append(opts, core.WithQueryValidator(security.NewValidator(security.WithStrict(true))))
	}
	return opts, nil
}
