package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/acmutd/grades-api/internal/server/ratelimit"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// Options configures the middleware chain.
type Options struct {
	AllowedOrigin string
	RateLimit     int
	RateWindow    time.Duration
}

// Manager wires all HTTP middlewares with shared dependencies.
type Manager struct {
	opts        Options
	logger      *zap.Logger
	rateLimiter *ratelimit.Limiter

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewManager builds a middleware manager and registers its metrics on reg.
func NewManager(opts Options, logger *zap.Logger, limiter *ratelimit.Limiter, reg prometheus.Registerer) *Manager {
	if opts.AllowedOrigin == "" {
		opts.AllowedOrigin = "*"
	}

	m := &Manager{
		opts:        opts,
		logger:      logger,
		rateLimiter: limiter,
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "grades",
				Subsystem: "api",
				Name:      "requests_total",
				Help:      "Total number of API requests",
			},
			[]string{"method", "route", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "grades",
				Subsystem: "api",
				Name:      "request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"method", "route"},
		),
	}
	reg.MustRegister(m.requests, m.duration)

	return m
}

// RequestID echoes the caller's X-Request-ID or assigns a new one.
func (m *Manager) RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// AccessLog writes one structured line per request.
func (m *Manager) AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("query", c.Request.URL.RawQuery),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}

		switch {
		case status >= http.StatusInternalServerError:
			m.logger.Error("HTTP request", fields...)
		case status >= http.StatusBadRequest:
			m.logger.Warn("HTTP request", fields...)
		default:
			m.logger.Info("HTTP request", fields...)
		}
	}
}

// Metrics records request counts and latencies per route.
func (m *Manager) Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method

		m.requests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// Recovery turns a panic in a handler into a bare 500 response.
func (m *Manager) Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		m.logger.Error("request panicked",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("path", c.Request.URL.Path),
			zap.Any("panic", recovered),
		)
		c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		c.Abort()
	})
}

// CORS sets the allow-origin headers and answers preflight requests.
func (m *Manager) CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", m.opts.AllowedOrigin)
		if m.opts.AllowedOrigin != "*" {
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// RateLimit enforces per-client request limits. It is a no-op when no limit
// is configured.
func (m *Manager) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.opts.RateLimit <= 0 || m.rateLimiter == nil {
			c.Next()
			return
		}

		switch c.Request.URL.Path {
		case "/health", "/metrics":
			c.Next()
			return
		}

		if !m.rateLimiter.Allow(c.ClientIP(), m.opts.RateLimit, m.opts.RateWindow) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		c.Next()
	}
}
