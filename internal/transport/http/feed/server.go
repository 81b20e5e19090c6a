// Package feedhttp exposes the candle pipeline over HTTP.
package feedhttp

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"chartfeed/internal/feed"
	"chartfeed/internal/logger"
	"chartfeed/internal/market"
	"chartfeed/internal/preview"
	"chartfeed/internal/store/fetchlog"
)

const (
	serviceName    = "chartfeed"
	defaultAddr    = ":8000"
	defaultVersion = "2.0"
)

// Server serves the fetch endpoint plus liveness and audit routes.
type Server struct {
	addr    string
	version string
	svc     *feed.Service
	fetches *fetchlog.Store
	router  *gin.Engine
}

// Config describes the HTTP server dependencies.
type Config struct {
	Addr        string
	CORSOrigins []string
	Version     string
	Svc         *feed.Service
	// Fetches enables GET /fetches when set.
	Fetches *fetchlog.Store
}

// NewServer builds the HTTP server.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Svc == nil {
		return nil, errors.New("http server requires a feed service")
	}
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.Version == "" {
		cfg.Version = defaultVersion
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(), corsMiddleware(cfg.CORSOrigins))

	s := &Server{
		addr:    cfg.Addr,
		version: cfg.Version,
		svc:     cfg.Svc,
		fetches: cfg.Fetches,
		router:  router,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.router.GET("/", s.handleRoot)
	s.router.GET("/health", s.handleHealth)
	s.router.POST("/scrape", s.handleScrape)
	s.router.GET("/preview", s.handlePreview)
	if s.fetches != nil {
		s.router.GET("/fetches", s.handleFetches)
	}
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": serviceName,
		"version": s.version,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"provider": s.svc.Provider(),
		"policy":   s.svc.PolicyName(),
	})
}

func (s *Server) handleScrape(c *gin.Context) {
	var req feed.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, feed.Response{
			Success: false,
			Candles: []market.Candle{},
			Message: "Invalid request: " + err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, s.svc.Fetch(c.Request.Context(), req))
}

func (s *Server) handlePreview(c *gin.Context) {
	req := feed.Request{
		Symbol:    c.Query("symbol"),
		Timeframe: c.DefaultQuery("timeframe", "2m"),
	}
	if req.Symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol required"})
		return
	}
	req.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "0"))
	req.HistoricalDays, _ = strconv.Atoi(c.DefaultQuery("historical_days", "0"))

	resp := s.svc.Fetch(c.Request.Context(), req)
	if !resp.Success {
		c.JSON(http.StatusOK, resp)
		return
	}
	html, err := preview.Render(preview.Input{
		Symbol:    resp.Symbol,
		Timeframe: req.Timeframe,
		Candles:   resp.Candles,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

func (s *Server) handleFetches(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	entries, err := s.fetches.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"fetches": entries})
}

// requestLogger traces every call for debugging fetch traffic.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		client := c.ClientIP()
		c.Next()
		dur := time.Since(start)
		status := c.Writer.Status()
		fullPath := path
		if query != "" {
			fullPath = path + "?" + query
		}
		logger.Debugf("HTTP %s %s status=%d ip=%s dur=%s", method, fullPath, status, client, dur)
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	corsCfg := cors.DefaultConfig()
	allowAll := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
	}
	if allowAll {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
		corsCfg.AllowCredentials = true
	}
	return cors.New(corsCfg)
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Start runs the HTTP server until ctx is canceled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
