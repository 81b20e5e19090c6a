package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfcfg "chartfeed/internal/config"
)

func TestNewAppNilConfig(t *testing.T) {
	_, err := NewApp(nil)
	require.Error(t, err)
}

func TestBuildDefaultConfig(t *testing.T) {
	app, err := NewAppBuilder(cfcfg.Default()).Build(context.Background())
	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, "tradingview", string(app.backend.Source.Kind()))
	assert.Nil(t, app.fetches)
	app.Close()
}

func TestBuildWithAuditStore(t *testing.T) {
	cfg := cfcfg.Default()
	cfg.Store.FetchLogPath = filepath.Join(t.TempDir(), "fetches.db")

	app, err := NewAppBuilder(cfg).Build(context.Background())
	require.NoError(t, err)
	require.NotNil(t, app.fetches)
	app.Close()
}

func TestBuildUnknownProvider(t *testing.T) {
	cfg := cfcfg.Default()
	cfg.Provider.Active = "bloomberg"

	_, err := NewAppBuilder(cfg).Build(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "init provider backend")
}

func TestBuildUnknownPolicy(t *testing.T) {
	cfg := cfcfg.Default()
	cfg.Classify.Active = "made-up"

	_, err := NewAppBuilder(cfg).Build(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "init policy registry")
}
