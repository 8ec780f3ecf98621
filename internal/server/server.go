package server

import (
	"net/http"
	"time"

	"github.com/acmutd/grades-api/internal/config"
	"github.com/acmutd/grades-api/internal/server/handlers"
	"github.com/acmutd/grades-api/internal/server/middleware"
	"github.com/acmutd/grades-api/internal/server/ratelimit"
	"github.com/acmutd/grades-api/internal/server/router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

const rateLimitCleanupInterval = 1 * time.Minute

// NewHandler builds the complete HTTP handler: routes, middleware and a
// private metrics registry. The returned stop function releases background
// resources.
func NewHandler(cfg *config.Config, queries handlers.GradeQuerier, logger *zap.Logger) (http.Handler, func()) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var limiter *ratelimit.Limiter
	stop := func() {}
	if cfg.RateLimit > 0 {
		limiter = ratelimit.NewLimiter()
		limiter.StartCleanup(rateLimitCleanupInterval)
		stop = limiter.Stop
	}

	mw := middleware.NewManager(middleware.Options{
		AllowedOrigin: cfg.AllowedOrigin,
		RateLimit:     cfg.RateLimit,
		RateWindow:    cfg.RateWindow,
	}, logger, limiter, registry)

	handler := handlers.New(queries, cfg.PublicDir)

	return router.New(handler, mw, registry), stop
}

// NewServer returns an *http.Server ready to ListenAndServe.
func NewServer(cfg *config.Config, queries handlers.GradeQuerier, logger *zap.Logger) *http.Server {
	handler, stop := NewHandler(cfg, queries, logger)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	srv.RegisterOnShutdown(stop)

	return srv
}
