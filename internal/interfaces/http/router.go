// Package http assembles the gin route tree and HTTP server of the query API.
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/hypocal-explain/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/hypocal-explain/internal/interfaces/http/handlers"
	"github.com/turtacn/hypocal-explain/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies required
// to construct the route tree.
type RouterConfig struct {
	// Handlers
	ExplainHandler *handlers.ExplainHandler
	HealthHandler  *handlers.HealthHandler

	// Middleware
	Logging        *middleware.LoggingConfig
	CORSOrigins    []string
	Recorder       middleware.HTTPRecorder
	RequestTimeout time.Duration

	// Infrastructure
	Logger         logging.Logger
	MetricsPath    string
	MetricsHandler http.Handler
	Mode           string
}

// NewRouter constructs the route tree. Nil handlers leave their routes
// unregistered.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}
	logCfg := middleware.DefaultLoggingConfig()
	if cfg.Logging != nil {
		logCfg = *cfg.Logging
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoRoute(handlers.NoRoute)

	// --- Global middleware ---
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID(cfg.Logger))
	if len(cfg.CORSOrigins) > 0 {
		r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins...)))
	}
	r.Use(middleware.RequestLogging(cfg.Logger, logCfg))
	if cfg.Recorder != nil {
		r.Use(middleware.Metrics(cfg.Recorder))
	}
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	// --- Health and metrics ---
	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsHandler != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(cfg.MetricsHandler))
	}

	// --- API v1 ---
	api := r.Group("/api/v1")
	registerExplainRoutes(api, cfg.ExplainHandler)

	return r
}

// registerExplainRoutes mounts the catalog, model and analysis endpoints.
func registerExplainRoutes(r *gin.RouterGroup, h *handlers.ExplainHandler) {
	if h == nil {
		return
	}
	r.GET("/features", h.ListFeatures)
	r.GET("/features/:id", h.GetFeature)
	r.GET("/models/:variant", h.GetModel)

	r.POST("/risk", h.Risk)
	r.POST("/contributions", h.Contributions)
	r.POST("/insights", h.Insights)
	r.POST("/counterfactual", h.Counterfactual)
	r.POST("/sensitivity", h.Sensitivity)
	r.POST("/stability", h.Stability)
	r.POST("/trajectory", h.Trajectory)
	r.POST("/explain", h.Explain)
}

//Personal.AI order the ending
