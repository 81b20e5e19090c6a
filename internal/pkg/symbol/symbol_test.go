package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"winz25", "WINZ25"},
		{"  petr4 ", "PETR4"},
		{"BMFBOVESPA:WINZ25", "WINZ25"},
		{"b3-winfut", "WINFUT"},
		{"BTC-USD", "BTC-USD"},
		{"NASDAQ:AAPL", "AAPL"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Clean(tc.in), "Clean(%q)", tc.in)
	}
}

func TestTradingViewResolve(t *testing.T) {
	r := TradingView

	t.Run("futures roots collapse to continuations", func(t *testing.T) {
		got := r.Resolve("WINZ25")
		assert.Equal(t, "WIN1!", got.Symbol)
		assert.Equal(t, "BMFBOVESPA", got.Exchange)
		assert.True(t, got.Continuous)

		assert.Equal(t, "WDO1!", r.Resolve("wdof26").Symbol)
		assert.Equal(t, "DOL1!", r.Resolve("DOLH26").Symbol)
		assert.Equal(t, "IND1!", r.Resolve("INDV25").Symbol)
	})

	t.Run("explicit venue prefix wins", func(t *testing.T) {
		got := r.Resolve("NASDAQ:AAPL")
		assert.Equal(t, "AAPL", got.Symbol)
		assert.Equal(t, "NASDAQ", got.Exchange)
		assert.False(t, got.Continuous)
	})

	t.Run("unknown symbols pass through cleaned", func(t *testing.T) {
		got := r.Resolve("petr4")
		assert.Equal(t, "PETR4", got.Symbol)
		assert.Equal(t, "BMFBOVESPA", got.Exchange)
	})
}

func TestYahooResolve(t *testing.T) {
	r := Yahoo

	t.Run("futures roots degrade to proxies", func(t *testing.T) {
		assert.Equal(t, "^BVSP", r.Resolve("WINZ25").Symbol)
		assert.Equal(t, "^BVSP", r.Resolve("IND1!").Symbol)
		assert.Equal(t, "BRL=X", r.Resolve("wdo").Symbol)
		assert.Equal(t, "BRL=X", r.Resolve("DOLH26").Symbol)
	})

	t.Run("bare equities get the local suffix", func(t *testing.T) {
		assert.Equal(t, "PETR4.SA", r.Resolve("petr4").Symbol)
		assert.Equal(t, "VALE3.SA", r.Resolve("BMFBOVESPA:VALE3").Symbol)
	})

	t.Run("already-addressed tickers pass through", func(t *testing.T) {
		assert.Equal(t, "^BVSP", r.Resolve("^BVSP").Symbol)
		assert.Equal(t, "BRL=X", r.Resolve("BRL=X").Symbol)
		assert.Equal(t, "PETR4.SA", r.Resolve("PETR4.SA").Symbol)
	})
}

func TestResolveIsTotal(t *testing.T) {
	inputs := []string{"WINZ25", "x", "9", "BMFBOVESPA:WDOF26", "brl=x", "zzz-123"}
	for _, in := range inputs {
		assert.NotEmpty(t, TradingView.Resolve(in).Symbol, "tradingview %q", in)
		assert.NotEmpty(t, Yahoo.Resolve(in).Symbol, "yahoo %q", in)
	}
}
