// Package app wires configuration into the running service: provider
// backend, policy registry, feed pipeline and HTTP transport.
package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	cfcfg "chartfeed/internal/config"
	"chartfeed/internal/gateway/scrape"
	"chartfeed/internal/logger"
	"chartfeed/internal/market"
	"chartfeed/internal/scheduler"
	"chartfeed/internal/store/fetchlog"
	feedhttp "chartfeed/internal/transport/http/feed"
)

// App holds the assembled services.
type App struct {
	cfg     *cfcfg.Config
	http    *feedhttp.Server
	fetches *fetchlog.Store
	backend market.Backend
}

// NewApp builds the application from config without starting it.
func NewApp(cfg *cfcfg.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return buildAppWithWire(context.Background(), cfg)
}

// Run starts the HTTP transport and, when the scrape provider is active,
// warms the headless browser. Blocks until ctx is canceled or a service
// fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := a.http.Start(ctx); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	if a.backend.Source.Kind() == market.ProviderScrape {
		group.Go(func() error {
			// The first chart render pays the browser startup cost;
			// spend it before traffic arrives.
			if err := scrape.EnsureHeadlessAvailable(ctx); err != nil {
				logger.Warnf("headless browser warmup failed: %v", err)
			}
			return nil
		})
	}

	if retention := a.cfg.Store.FetchLogRetentionDays; a.fetches != nil && retention > 0 {
		group.Go(func() error {
			a.runAuditSweep(ctx, retention)
			return nil
		})
	}

	return group.Wait()
}

// runAuditSweep prunes aged fetch audit rows once a day, shortly after
// midnight UTC. Blocks until ctx is canceled.
func (a *App) runAuditSweep(ctx context.Context, retentionDays int) {
	maxAge := time.Duration(retentionDays) * 24 * time.Hour
	sweep := scheduler.NewAligned(ctx, "fetchlog-prune", 24*time.Hour, 5*time.Minute)
	sweep.RunImmediately = true
	sweep.Start(func() {
		cutoff := time.Now().Add(-maxAge)
		pruned, err := a.fetches.PruneOlderThan(ctx, cutoff)
		if err != nil {
			logger.Warnf("fetch log prune failed: %v", err)
			return
		}
		if pruned > 0 {
			logger.Infof("fetch log prune removed %d entries older than %s", pruned, cutoff.Format(time.RFC3339))
		}
	})
}

// Close releases held resources.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.fetches != nil {
		_ = a.fetches.Close()
	}
}
