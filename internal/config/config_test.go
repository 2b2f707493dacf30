package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
	return dir
}

func clearEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{"SUPABASE_URL", "SUPABASE_ANON_KEY", "STORAGE_TYPE", "STORE_DRIVER", "SERVER_MODE", "PORT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	dir := writeConfig(t, `
backend:
  url: "https://hunt.example.co"
  api_key: "anon"
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, StoreDriverPostgREST, cfg.Store.Driver)
	assert.Equal(t, "supabase", cfg.Storage.Type)
	assert.Equal(t, "treasure-hunt", cfg.Storage.Bucket)
	assert.Equal(t, 15*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 60*time.Second, cfg.Tracker.SubmitLockTTL)
	assert.True(t, cfg.Tracker.EnforceGating)
	assert.True(t, cfg.Tracker.CompensateOrphans)
}

func TestLoadConfig_EnvOverridesBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("SUPABASE_URL", "https://env.example.co")
	t.Setenv("SUPABASE_ANON_KEY", "env-key")

	dir := writeConfig(t, "server:\n  mode: release\n")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.co", cfg.Backend.URL)
	assert.Equal(t, "env-key", cfg.Backend.APIKey)
	assert.Equal(t, "release", cfg.Server.Mode)
}

func TestLoadConfig_EnvOverridesSeconds(t *testing.T) {
	clearEnv(t)
	t.Setenv("HUNT_BACKEND_TIMEOUT_SECONDS", "7")
	t.Setenv("HUNT_TRACKER_SUBMIT_LOCK_TTL_SECONDS", "90")

	dir := writeConfig(t, `
backend:
  url: "https://hunt.example.co"
  api_key: "anon"
  timeout_seconds: 15
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 7*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 90*time.Second, cfg.Tracker.SubmitLockTTL)
}

func TestLoadConfig_MissingBackendKey(t *testing.T) {
	clearEnv(t)

	dir := writeConfig(t, `
backend:
  url: "https://hunt.example.co"
`)

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Backend: BackendConfig{URL: "https://x", APIKey: "k"},
			Store:   StoreConfig{Driver: StoreDriverPostgREST},
			Storage: StorageConfig{Type: "supabase", Bucket: "treasure-hunt"},
			Tracker: TrackerConfig{MaxUploadMB: 10},
		}
	}

	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown store", mutate: func(c *Config) { c.Store.Driver = "sqlite" }, wantErr: true},
		{name: "postgres without url", mutate: func(c *Config) { c.Store.Driver = StoreDriverPostgres }, wantErr: true},
		{name: "mysql without host", mutate: func(c *Config) { c.Store.Driver = StoreDriverMySQL }, wantErr: true},
		{name: "minio without endpoint", mutate: func(c *Config) { c.Storage.Type = "minio" }, wantErr: true},
		{name: "unknown storage", mutate: func(c *Config) { c.Storage.Type = "ftp" }, wantErr: true},
		{name: "zero upload size", mutate: func(c *Config) { c.Tracker.MaxUploadMB = 0 }, wantErr: true},
		{
			name: "local storage with postgres store needs no backend",
			mutate: func(c *Config) {
				c.Backend = BackendConfig{}
				c.Store.Driver = StoreDriverPostgres
				c.Postgres.URL = "postgres://localhost/hunt"
				c.Storage.Type = "local"
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)

			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
