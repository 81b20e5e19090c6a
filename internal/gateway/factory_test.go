package gateway

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfcfg "chartfeed/internal/config"
	"chartfeed/internal/market"
)

func TestNewBackendFromConfig(t *testing.T) {
	t.Run("default config serves tradingview", func(t *testing.T) {
		be, err := NewBackendFromConfig(cfcfg.Default())
		require.NoError(t, err)

		assert.Equal(t, market.ProviderTradingView, be.Source.Kind())
		assert.Equal(t, market.AddressByCount, be.Profile.Mode)
		assert.Equal(t, 9*time.Hour, be.Profile.Session)

		rs := be.Symbols.Resolve("WIN")
		assert.Equal(t, "WIN1!", rs.Symbol)
		assert.Equal(t, "BMFBOVESPA", rs.Exchange)
	})

	t.Run("yahoo", func(t *testing.T) {
		cfg := cfcfg.Default()
		cfg.Provider.Active = "yahoo"

		be, err := NewBackendFromConfig(cfg)
		require.NoError(t, err)

		assert.Equal(t, market.ProviderYahoo, be.Source.Kind())
		assert.Equal(t, market.AddressByRange, be.Profile.Mode)
		assert.Equal(t, "1mo", be.Profile.RetryFloor)
		assert.Equal(t, "^BVSP", be.Symbols.Resolve("WIN").Symbol)
	})

	t.Run("scrape borrows tradingview interval tokens", func(t *testing.T) {
		cfg := cfcfg.Default()
		cfg.Provider.Active = "scrape"

		be, err := NewBackendFromConfig(cfg)
		require.NoError(t, err)

		assert.Equal(t, market.ProviderScrape, be.Source.Kind())
		assert.Equal(t, market.AddressByPage, be.Profile.Mode)
		_, token := be.Profile.Timeframes.Resolve("1h")
		assert.Equal(t, "60", token)
	})

	t.Run("nil config", func(t *testing.T) {
		_, err := NewBackendFromConfig(nil)
		require.Error(t, err)
	})

	t.Run("unknown provider", func(t *testing.T) {
		cfg := cfcfg.Default()
		cfg.Provider.Active = "bloomberg"

		_, err := NewBackendFromConfig(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported data provider")
	})
}
