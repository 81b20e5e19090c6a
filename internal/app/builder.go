package app

import (
	"context"
	"fmt"
	"strings"

	"chartfeed/internal/classify"
	cfcfg "chartfeed/internal/config"
	"chartfeed/internal/feed"
	"chartfeed/internal/gateway"
	"chartfeed/internal/logger"
	"chartfeed/internal/market"
	"chartfeed/internal/store/fetchlog"
	feedhttp "chartfeed/internal/transport/http/feed"
)

// AppBuilder assembles an App from config. The build functions are fields so
// tests can substitute them.
type AppBuilder struct {
	cfg *cfcfg.Config

	backendFn  func(*cfcfg.Config) (market.Backend, error)
	registryFn func(path, active string) (*classify.Registry, error)
	fetchlogFn func(path string) (*fetchlog.Store, error)
}

type AppBuilderOption func(*AppBuilder)

func NewAppBuilder(cfg *cfcfg.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:        cfg,
		backendFn:  gateway.NewBackendFromConfig,
		registryFn: classify.NewRegistry,
		fetchlogFn: fetchlog.New,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if b.cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	cfg := b.cfg

	backend, err := b.backendFn(cfg)
	if err != nil {
		return nil, fmt.Errorf("init provider backend: %w", err)
	}
	logger.Infof("✓ Provider backend: %s (exchange=%s)", backend.Source.Kind(), cfg.Market.Exchange)

	registry, err := b.registryFn(cfg.Classify.PolicyFile, cfg.Classify.Active)
	if err != nil {
		return nil, fmt.Errorf("init policy registry: %w", err)
	}
	logger.Infof("✓ Classification policy: %s", registry.Active().Name)

	var fetches *fetchlog.Store
	if path := strings.TrimSpace(cfg.Store.FetchLogPath); path != "" {
		fetches, err = b.fetchlogFn(path)
		if err != nil {
			return nil, fmt.Errorf("init fetch log: %w", err)
		}
		logger.Infof("✓ Fetch audit log: %s", path)
	}

	svc, err := feed.NewService(feed.ServiceConfig{
		Backend:  backend,
		Policies: registry,
		Audit:    fetches,
	})
	if err != nil {
		return nil, err
	}

	server, err := feedhttp.NewServer(feedhttp.Config{
		Addr:        cfg.HTTP.Addr,
		CORSOrigins: cfg.HTTP.CORSOrigins,
		Svc:         svc,
		Fetches:     fetches,
	})
	if err != nil {
		return nil, fmt.Errorf("init http server: %w", err)
	}
	logger.Infof("✓ HTTP listening on %s", server.Addr())

	return &App{cfg: cfg, http: server, fetches: fetches, backend: backend}, nil
}
