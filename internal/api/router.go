// Package api provides HTTP routing, handlers, and middleware for route queries
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/LdDl/roadgraph"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Options configures router
type Options struct {
	// QueryTimeout bounds a single engine query
	QueryTimeout time.Duration
	Development  bool
	Logger       *slog.Logger
}

// NewRouter creates and configures the HTTP router with all routes and middleware
func NewRouter(engine *roadgraph.Engine, opts Options) http.Handler {
	if !opts.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = 10 * time.Second
	}

	handler := newHandler(engine, opts.QueryTimeout)

	r := gin.New()
	r.Use(Logging(opts.Logger), gin.Recovery())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "OPTIONS"}
	config.AllowHeaders = []string{"*"}
	r.Use(cors.New(config))

	r.GET("/health", handler.Health)
	r.GET("/route", handler.Route)
	r.GET("/articulation-points", handler.ArticulationPoints)
	r.GET("/components", handler.Components)
	r.GET("/roads", handler.Roads)

	return r
}

// Logging logs each HTTP request with method, path, status, and duration
func Logging(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}
