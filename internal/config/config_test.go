package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lekarna.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validYAML = `
server:
  addr: "127.0.0.1:9090"
  shutdown_timeout: "2s"

database:
  path: "/tmp/lekarna-test.sqlite3"

records:
  backend: "mongo"
  mongo_uri: "mongodb://localhost:27017"

auth:
  token_ttl: "24h"
  reset_token_delivery: "response"

calendar:
  timezone: "Europe/Ljubljana"

log:
  level: "debug"
`

func TestLoad_ValidYAML(t *testing.T) {
	cfg, err := Load(writeYAML(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr)
	assert.Equal(t, 2*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, BackendMongo, cfg.Records.Backend)
	assert.Equal(t, "lekarna", cfg.Records.MongoDatabase)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, time.Hour, cfg.Auth.ResetTokenTTL)
	assert.Equal(t, DeliveryResponse, cfg.Auth.ResetTokenDelivery)
	require.NotNil(t, cfg.Calendar.Location)
	assert.Equal(t, "Europe/Ljubljana", cfg.Calendar.Location.String())
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeYAML(t, validYAML)
	t.Setenv("LEKARNA_ADDR", ":7070")
	t.Setenv("LEKARNA_TIMEZONE", "UTC")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, time.UTC, cfg.Calendar.Location)
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "lekarna.sqlite3", cfg.Database.Path)
	assert.Equal(t, BackendSQLite, cfg.Records.Backend)
	assert.Equal(t, 168*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, DeliveryLog, cfg.Auth.ResetTokenDelivery)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func validConfig() Config {
	return Config{
		Database: DatabaseConfig{Path: "x.sqlite3"},
		Records:  RecordsConfig{Backend: BackendSQLite},
		Auth: AuthConfig{
			TokenTTL:           time.Hour,
			ResetTokenTTL:      time.Hour,
			ResetTokenDelivery: DeliveryLog,
		},
		Calendar: CalendarConfig{Timezone: "UTC"},
		Log:      LogConfig{Level: "info"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"unknown backend", func(c *Config) { c.Records.Backend = "postgres" }},
		{"mongo without uri", func(c *Config) { c.Records.Backend = BackendMongo }},
		{"empty db path", func(c *Config) { c.Database.Path = "" }},
		{"zero token ttl", func(c *Config) { c.Auth.TokenTTL = 0 }},
		{"unknown delivery", func(c *Config) { c.Auth.ResetTokenDelivery = "email" }},
		{"unknown log level", func(c *Config) { c.Log.Level = "loud" }},
		{"unknown timezone", func(c *Config) { c.Calendar.Timezone = "Mars/Olympus" }},
	}

	base := validConfig()
	require.NoError(t, base.Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
