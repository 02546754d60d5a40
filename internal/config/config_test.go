package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/catalogmirror/pkg/errors"
)

// isolate runs the test in an empty directory with no env files.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(LoadOptions{EnvFiles: []string{}})
	require.NoError(t, err)
	assert.Equal(t, Default().APIURL, cfg.APIURL)
	assert.Equal(t, []string{"gloves", "facemasks", "beanies"}, cfg.Categories)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 5*time.Second, cfg.RetryDelay)
	assert.Equal(t, 500, cfg.BatchSize)
	assert.Equal(t, 5*time.Minute, cfg.UpdateInterval)
	assert.Equal(t, 0, cfg.MaxRetryRounds)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Empty(t, cfg.ConfigFile)
}

func TestLoadConfigFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "catalogmirror.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
categories: [boots, hats]
update_interval: 30s
max_items_db_call: 50
offline_mode_active: true
database:
  driver: postgres
  dsn: postgres://mirror@localhost/mirror
  max_open_conns: 8
`), 0o644))

	cfg, err := Load(LoadOptions{EnvFiles: []string{}})
	require.NoError(t, err)
	assert.Equal(t, []string{"boots", "hats"}, cfg.Categories)
	assert.Equal(t, 30*time.Second, cfg.UpdateInterval)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.True(t, cfg.Offline)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, filepath.Base(path), filepath.Base(cfg.ConfigFile))

	store := cfg.Store()
	assert.Equal(t, "postgres", store.Driver)
	assert.Equal(t, 8, store.MaxOpenConns)
	assert.True(t, cfg.Sources().Offline)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_retry_rounds: 3\n"), 0o644))
	t.Setenv("CATALOGMIRROR_MAX_RETRY_ROUNDS", "7")
	t.Setenv("CATALOGMIRROR_CATEGORIES", "boots, hats")
	t.Setenv("CATALOGMIRROR_DATABASE_DSN", "mirror.db")

	cfg, err := Load(LoadOptions{ConfigFile: path, EnvFiles: []string{}})
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.MaxRetryRounds)
	assert.Equal(t, []string{"boots", "hats"}, cfg.Categories)
	assert.Equal(t, "mirror.db", cfg.Database.DSN)
}

func TestLoadEnvFile(t *testing.T) {
	dir := isolate(t)
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("CATALOGMIRROR_SNAPSHOT_DIR=from-dotenv\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("CATALOGMIRROR_SNAPSHOT_DIR") })

	cfg, err := Load(LoadOptions{EnvFiles: []string{envFile}})
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.SnapshotDir)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(LoadOptions{ConfigFile: "nope.yaml", EnvFiles: []string{}})
	require.Error(t, err)
	var cfgErr *errors.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"no categories", func(c *Config) { c.Categories = nil }, KeyCategories},
		{"zero batch", func(c *Config) { c.BatchSize = 0 }, KeyBatchSize},
		{"negative rounds", func(c *Config) { c.MaxRetryRounds = -1 }, KeyMaxRetryRounds},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }, KeyRequestTimeout},
		{"bad driver", func(c *Config) { c.Database.Driver = "mysql" }, KeyDatabaseDriver},
		{"negative pool", func(c *Config) { c.Database.MaxOpenConns = -1 }, KeyDatabaseMaxOpenConns},
		{"live without url", func(c *Config) { c.APIURL = "" }, KeyAPIURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			var vErr *errors.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}

	offline := Default()
	offline.APIURL = ""
	offline.Offline = true
	assert.NoError(t, offline.Validate())
}

func TestProjections(t *testing.T) {
	cfg := Default()
	assert.Len(t, cfg.Client(), 5)
	assert.Equal(t, "info", cfg.Logging().Level)
	assert.Equal(t, cfg.RequestTimeout, cfg.Sources().Timeout)
}
