package gateway

import (
	"fmt"
	"strings"

	cfcfg "chartfeed/internal/config"
	"chartfeed/internal/gateway/scrape"
	"chartfeed/internal/gateway/tradingview"
	"chartfeed/internal/gateway/yahoo"
	"chartfeed/internal/market"
	"chartfeed/internal/pkg/symbol"
)

// NewBackendFromConfig assembles the active provider's fetcher, addressing
// profile and symbol resolver.
func NewBackendFromConfig(cfg *cfcfg.Config) (market.Backend, error) {
	if cfg == nil {
		return market.Backend{}, fmt.Errorf("nil config")
	}
	session := cfg.Market.SessionLength()
	tvSymbols := symbol.TradingViewResolver{DefaultExchange: cfg.Market.Exchange}

	switch strings.ToLower(strings.TrimSpace(cfg.Provider.Active)) {
	case "", "tradingview", "tv":
		src, err := tradingview.New(tradingview.Config{
			WSURL:            cfg.Provider.TradingView.WSURL,
			AuthToken:        cfg.Provider.TradingView.AuthToken,
			HandshakeTimeout: cfg.Provider.TradingView.HandshakeTimeout,
			ReadTimeout:      cfg.Provider.TradingView.ReadTimeout,
			MaxBars:          cfg.Provider.TradingView.MaxBars,
		})
		if err != nil {
			return market.Backend{}, err
		}
		return market.Backend{
			Source: src,
			Profile: market.Profile{
				Mode:       market.AddressByCount,
				Timeframes: tradingview.Timeframes(),
				Session:    session,
			},
			Symbols: tvSymbols,
		}, nil
	case "yahoo", "yahoo-finance":
		src, err := yahoo.New(yahoo.Config{
			BaseURL:     cfg.Provider.Yahoo.BaseURL,
			HTTPTimeout: cfg.Provider.Yahoo.HTTPTimeout,
			UserAgent:   cfg.Provider.Yahoo.UserAgent,
		})
		if err != nil {
			return market.Backend{}, err
		}
		return market.Backend{
			Source: src,
			Profile: market.Profile{
				Mode:       market.AddressByRange,
				Timeframes: yahoo.Timeframes(),
				Session:    session,
				Ranges:     yahoo.Ranges(),
				RetryFloor: "1mo",
			},
			Symbols: symbol.Yahoo,
		}, nil
	case "scrape", "browser":
		src, err := scrape.New(scrape.Config{
			ChartURL:    cfg.Provider.Scrape.ChartURL,
			SettleDelay: cfg.Provider.Scrape.SettleDelay,
			NavTimeout:  cfg.Provider.Scrape.NavTimeout,
		})
		if err != nil {
			return market.Backend{}, err
		}
		// The scraped chart page speaks TradingView interval tokens.
		return market.Backend{
			Source: src,
			Profile: market.Profile{
				Mode:       market.AddressByPage,
				Timeframes: tradingview.Timeframes(),
				Session:    session,
			},
			Symbols: tvSymbols,
		}, nil
	default:
		return market.Backend{}, fmt.Errorf("unsupported data provider: %s", cfg.Provider.Active)
	}
}
