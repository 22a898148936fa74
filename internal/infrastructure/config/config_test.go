package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	// when
	cfg, err := LoadConfig(Options{})

	// then
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.False(t, cfg.OTLP.Enabled)
	assert.Equal(t, "localhost:4317", cfg.OTLP.Endpoint)
	assert.Equal(t, "products-api", cfg.OTLP.ServiceName)
	assert.Equal(t, "development", cfg.OTLP.Environment)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
}

func TestLoadConfig_Layers(t *testing.T) {
	// given
	yamlFile := writeFile(t, "config.yaml", `
server:
  port: "9090"
  shutdowntimeout: 3s
log:
  level: warn
otlp:
  servicename: from-yaml
`)
	envFile := writeFile(t, ".env", "PRODUCTS_LOG_LEVEL=error\nPRODUCTS_SERVER_HOST=127.0.0.1\nUNRELATED=1\n")
	t.Setenv("PRODUCTS_SERVER_PORT", "7070")
	t.Setenv("PRODUCTS_OTLP_ENABLED", "true")

	// when
	cfg, err := LoadConfig(Options{ConfigFile: yamlFile, EnvFile: envFile})

	// then
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Server.Port, "environment wins over yaml")
	assert.Equal(t, "127.0.0.1", cfg.Server.Host, ".env wins over defaults")
	assert.Equal(t, "error", cfg.Log.Level, ".env wins over yaml")
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "from-yaml", cfg.OTLP.ServiceName)
	assert.True(t, cfg.OTLP.Enabled)
}

func TestLoadConfig_MissingFilesAreIgnored(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadConfig(Options{
		ConfigFile: filepath.Join(dir, "absent.yaml"),
		EnvFile:    filepath.Join(dir, "absent.env"),
	})
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server: ServerConfig{Host: "0.0.0.0", Port: "8080", ShutdownTimeout: time.Second},
			OTLP:   OTLPConfig{Endpoint: "localhost:4317"},
			Log:    LogConfig{Level: "info"},
		}
	}

	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "non-numeric port", mutate: func(c *Config) { c.Server.Port = "http" }, wantErr: true},
		{name: "port out of range", mutate: func(c *Config) { c.Server.Port = "70000" }, wantErr: true},
		{name: "zero shutdown timeout", mutate: func(c *Config) { c.Server.ShutdownTimeout = 0 }, wantErr: true},
		{name: "otlp enabled without endpoint", mutate: func(c *Config) { c.OTLP.Enabled = true; c.OTLP.Endpoint = "" }, wantErr: true},
		{name: "otlp disabled without endpoint", mutate: func(c *Config) { c.OTLP.Endpoint = "" }},
		{name: "unknown log level", mutate: func(c *Config) { c.Log.Level = "verbose" }, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLogConfig_SlogLevel(t *testing.T) {
	level, err := (&LogConfig{Level: "debug"}).SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}
