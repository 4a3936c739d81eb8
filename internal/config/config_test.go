package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coregx/sqlquery/internal/core"
	"github.com/coregx/sqlquery/internal/dialects"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sqlquery.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	def := Default()
	assert.Equal(t, def.Database, cfg.Database)
	assert.Equal(t, def.Log, cfg.Log)
	assert.False(t, cfg.ClearAfterExecution)
	assert.Empty(t, cfg.SensitiveFields)
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, `
clear_after_execution: true
database:
  driver: postgres
  dsn: postgres://localhost/app
  max_open_conns: 25
  health_check_interval: 30s
log:
  level: debug
sensitive_fields: [password, pin]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.ClearAfterExecution)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://localhost/app", cfg.Database.DSN)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 2, cfg.Database.MaxIdleConns, "unset keys keep defaults")
	assert.Equal(t, 30*time.Second, cfg.Database.HealthCheckInterval)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []string{"password", "pin"}, cfg.SensitiveFields)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "database:\n  driver: postgres\n")
	t.Setenv("SQLQUERY_DATABASE_DRIVER", "mysql")
	t.Setenv("SQLQUERY_DATABASE_STMT_CACHE_CAPACITY", "50")
	t.Setenv("SQLQUERY_CLEAR_AFTER_EXECUTION", "true")
	t.Setenv("SQLQUERY_SENSITIVE_FIELDS", "pin, otp")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 50, cfg.Database.StmtCacheCapacity)
	assert.True(t, cfg.ClearAfterExecution)
	assert.Equal(t, []string{"pin", "otp"}, cfg.SensitiveFields)
}

func TestLoad_PathFromEnv(t *testing.T) {
	path := writeFile(t, "log:\n  level: warn\n")
	t.Setenv(PathEnvVar, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown driver", "database:\n  driver: oracle\n"},
		{"negative pool", "database:\n  max_open_conns: -1\n"},
		{"unknown validation", "validation: paranoid\n"},
		{"bad yaml", "database: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"SQLQUERY_DATABASE_MAX_OPEN_CONNS": "database.max_open_conns",
		"SQLQUERY_LOG_LEVEL":               "log.level",
		"SQLQUERY_CLEAR_AFTER_EXECUTION":   "clear_after_execution",
	}
	for in, want := range tests {
		assert.Equal(t, want, envKey(in), in)
	}
}

func TestConfig_Dialect(t *testing.T) {
	cfg := Default()
	d, err := cfg.Dialect()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())

	cfg.Database.Dialect = "postgres"
	d, err = cfg.Dialect()
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())
}

func TestConfig_Options(t *testing.T) {
	cfg := Default()
	cfg.ClearAfterExecution = true

	var provider core.ConfigProvider = cfg
	opts, err := provider.Options()
	require.NoError(t, err)
	assert.True(t, opts.IsClearAfterExecution)

	q := core.New(dialects.GetDialect("generic"), core.WithConfigProvider(cfg))
	assert.True(t, q.Options().IsClearAfterExecution)
}

func TestConfig_DBOptions(t *testing.T) {
	cfg := Default()
	cfg.Database.HealthCheckInterval = time.Minute
	cfg.SensitiveFields = []string{"pin"}

	opts, err := cfg.DBOptions()
	require.NoError(t, err)
	assert.Len(t, opts, 8)

	cfg.Validation = "off"
	opts, err = cfg.DBOptions()
	require.NoError(t, err)
	assert.Len(t, opts, 7)

	cfg.Tracing = true
	opts, err = cfg.DBOptions()
	require.NoError(t, err)
	assert.Len(t, opts, 8)

	cfg.Database.Driver = "oracle"
	_, err = cfg.DBOptions()
	assert.Error(t, err)
}
