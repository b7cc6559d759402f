// Package api wires the gin-gonic HTTP transport described in spec §6:
// /search, /suggest, /explain plus /health, /ready and /metrics. Grounded
// on the teacher's apps/mcp-server/internal/api/server.go router
// composition, narrowed to the handful of middlewares this gateway needs.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/S-Corkum/search-gateway/internal/cache"
	"github.com/S-Corkum/search-gateway/internal/classifier"
	"github.com/S-Corkum/search-gateway/internal/dispatch"
	"github.com/S-Corkum/search-gateway/internal/engine"
	"github.com/S-Corkum/search-gateway/internal/health"
	"github.com/S-Corkum/search-gateway/internal/observability"
	"github.com/S-Corkum/search-gateway/internal/tenant"
)

// Deps bundles every collaborator a handler needs. Built once at the
// composition root (cmd/server/main.go) and never mutated afterward.
type Deps struct {
	Cache          *cache.TwoLevel
	ClassifierCfg  classifier.Config
	Dispatcher     *dispatch.Dispatcher
	SimpleAdapter  engine.Adapter
	TenantResolver *tenant.Resolver
	Prober         *health.Prober
	Logger         observability.Logger
	Metrics        observability.MetricsClient

	SmallTTL time.Duration
	LongTTL  time.Duration
	ShortTTL time.Duration

	SuggestTTL time.Duration
}

type Server struct {
	router   *gin.Engine
	deps     Deps
	validate *validator.Validate
}

func NewServer(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = observability.NoopLogger{}
	}
	if deps.Metrics == nil {
		deps.Metrics = observability.NoopMetrics{}
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{router: router, deps: deps, validate: validator.New()}
	s.registerMiddleware()
	s.registerRoutes()
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) registerMiddleware() {
	s.router.Use(requestIDMiddleware())
	s.router.Use(requestLoggerMiddleware(s.deps.Logger))
	s.router.Use(metricsMiddleware(s.deps.Metrics))
}

// requestIDMiddleware assigns a request id (reusing one supplied by the
// caller) so it can be correlated across logs and responses. It is not
// forwarded to engine calls.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

func (s *Server) registerRoutes() {
	s.router.POST("/search", s.handleSearch)
	s.router.POST("/suggest", s.handleSuggest)
	s.router.POST("/explain", s.handleExplain)

	s.router.GET("/health", s.handleHealth)
	s.router.GET("/ready", s.handleReady)

	if pm, ok := s.deps.Metrics.(*observability.PrometheusMetrics); ok {
		handler := promhttp.HandlerFor(pm.Registry(), promhttp.HandlerOpts{})
		s.router.GET("/metrics", gin.WrapH(handler))
	}
}

// requestLoggerMiddleware logs one line per request after the handler
// returns; handlers attach tenant/fingerprint/classification via the gin
// context, and this middleware reads them back for that line.
func requestLoggerMiddleware(logger observability.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		// §7's log contract ({tenant, fingerprint, classification,
		// elapsed_ms}) is attached via With() to a logger built after the
		// handler has returned; handlers do not log through it, so the
		// single "request" line below is the only one that carries these
		// fields.
		requestLogger := logger.With(map[string]any{
			"method":         c.Request.Method,
			"path":           c.Request.URL.Path,
			"status":         c.Writer.Status(),
			"elapsed_ms":     time.Since(start).Milliseconds(),
			"tenant":         c.GetString(ctxTenantID),
			"request_id":     c.GetString(ctxRequestID),
			"fingerprint":    c.GetString(ctxFingerprint),
			"classification": c.GetString(ctxClassification),
		})
		requestLogger.Info("request", nil)
	}
}

func metricsMiddleware(metrics observability.MetricsClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		labels := map[string]string{"path": c.FullPath(), "method": c.Request.Method}
		metrics.IncrementCounter("http_requests_total", labels)
		metrics.RecordDuration("http_request_duration_seconds", time.Since(start), labels)
	}
}
