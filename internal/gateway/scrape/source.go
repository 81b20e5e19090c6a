package scrape

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"chartfeed/internal/logger"
	"chartfeed/internal/market"
)

const (
	defaultChartURL   = "https://www.tradingview.com/chart/"
	defaultSettle     = 5 * time.Second
	defaultNavTimeout = 40 * time.Second
)

// Source drives a headless browser to the venue's chart page and reads the
// rendered legend. This is the least reliable provider; an empty result is
// a normal outcome, not a failure.
type Source struct {
	cfg Config
}

func New(cfg Config) (*Source, error) {
	return &Source{cfg: cfg.withDefaults()}, nil
}

func (s *Source) Kind() market.ProviderKind {
	return market.ProviderScrape
}

func (s *Source) Traits() market.Traits {
	return market.Traits{}
}

func (s *Source) FetchBars(ctx context.Context, q market.Query) ([]market.RawBar, error) {
	if err := EnsureHeadlessAvailable(ctx); err != nil {
		return nil, market.Errf(market.ProviderScrape, "browser", err)
	}
	pageURL := strings.TrimSpace(q.PageURL)
	if pageURL == "" {
		pageURL = s.chartURL(q)
	}

	parent, cancel := chromedp.NewContext(ctx)
	defer cancel()

	timeoutCtx, cancelTimeout := context.WithTimeout(parent, s.cfg.NavTimeout)
	defer cancelTimeout()

	var text string
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(1920, 1080),
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(s.cfg.SettleDelay),
		chromedp.Text("body", &text, chromedp.ByQuery),
	}
	if err := chromedp.Run(timeoutCtx, tasks...); err != nil {
		return nil, market.Errf(market.ProviderScrape, "navigate", err)
	}

	bars := Extract(text, time.Now().UTC())
	logger.Debugf("[scrape] %s rows=%d", pageURL, len(bars))
	return bars, nil
}

func (s *Source) chartURL(q market.Query) string {
	full := q.Symbol
	if q.Exchange != "" {
		full = q.Exchange + ":" + q.Symbol
	}
	return fmt.Sprintf("%s?symbol=%s&interval=%s",
		s.cfg.ChartURL, url.QueryEscape(full), url.QueryEscape(q.Interval))
}

var (
	headlessOnce sync.Once
	headlessErr  error
)

// EnsureHeadlessAvailable starts a throwaway browser once so a missing
// headless binary surfaces at startup instead of on the first request.
func EnsureHeadlessAvailable(ctx context.Context) error {
	headlessOnce.Do(func() {
		targetCtx := ctx
		if targetCtx == nil {
			targetCtx = context.Background()
		}
		parent, cancel := chromedp.NewContext(targetCtx)
		if cancel != nil {
			defer cancel()
		}
		headlessErr = chromedp.Run(parent)
	})
	return headlessErr
}
