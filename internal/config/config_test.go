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
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
app:
  log_level: debug
http:
  addr: ":9090"
provider:
  active: yahoo
  yahoo:
    http_timeout: 20s
market:
  exchange: NASDAQ
  session_hours: 6
classify:
  active: pressure
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "yahoo", cfg.Provider.Active)
	assert.Equal(t, 20*time.Second, cfg.Provider.Yahoo.HTTPTimeout)
	assert.Equal(t, "NASDAQ", cfg.Market.Exchange)
	assert.Equal(t, 6*time.Hour, cfg.Market.SessionLength())
	assert.Equal(t, "pressure", cfg.Classify.Active)
}

func TestLoadFillsDefaults(t *testing.T) {
	path := writeConfig(t, `
http:
  addr: ":8080"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "tradingview", cfg.Provider.Active)
	assert.Equal(t, "BMFBOVESPA", cfg.Market.Exchange)
	assert.Equal(t, 9*time.Hour, cfg.Market.SessionLength())
	assert.Equal(t, "directional", cfg.Classify.Active)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "unknown provider",
			body: "provider:\n  active: bloomberg\n",
			want: "provider.active",
		},
		{
			name: "bad addr",
			body: "http:\n  addr: localhost\n",
			want: "http.addr",
		},
		{
			name: "session hours out of range",
			body: "market:\n  session_hours: 30\n",
			want: "market.session_hours",
		},
		{
			name: "negative max bars",
			body: "provider:\n  tradingview:\n    max_bars: -5\n",
			want: "max_bars",
		},
		{
			name: "negative retention",
			body: "store:\n  fetch_log_retention_days: -1\n",
			want: "fetch_log_retention_days",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, validate(cfg))
	assert.Equal(t, ":8000", cfg.HTTP.Addr)
	assert.Equal(t, "tradingview", cfg.Provider.Active)
}

func TestResolve(t *testing.T) {
	t.Run("env override wins", func(t *testing.T) {
		path := writeConfig(t, "http:\n  addr: \":7000\"\n")
		t.Setenv(EnvConfigPath, path)

		cfg, err := Resolve(filepath.Join(t.TempDir(), "unused.yaml"))
		require.NoError(t, err)
		assert.Equal(t, ":7000", cfg.HTTP.Addr)
	})

	t.Run("fallback file", func(t *testing.T) {
		t.Setenv(EnvConfigPath, "")
		path := writeConfig(t, "http:\n  addr: \":7001\"\n")

		cfg, err := Resolve(path)
		require.NoError(t, err)
		assert.Equal(t, ":7001", cfg.HTTP.Addr)
	})

	t.Run("built-ins when nothing on disk", func(t *testing.T) {
		t.Setenv(EnvConfigPath, "")

		cfg, err := Resolve(filepath.Join(t.TempDir(), "missing.yaml"))
		require.NoError(t, err)
		assert.Equal(t, ":8000", cfg.HTTP.Addr)
	})
}
