// Package server is the library API service: one REST resource collection per
// entity, mounted under /api, backed by a local store.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/biblio/internal/logging"
	"github.com/mesh-intelligence/biblio/internal/schema"
	"github.com/mesh-intelligence/biblio/pkg/types"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "biblio-api"

// Config holds the HTTP settings of the service.
type Config struct {
	Listen      string
	Debug       bool
	CORSOrigins []string
}

// Server serves the resource protocol over a store.
type Server struct {
	config   Config
	registry *schema.Registry
	store    types.Backend
	log      *zap.SugaredLogger
	router   *gin.Engine
	server   *http.Server
	now      func() time.Time
}

// New builds the router. Call Start to listen, or use Handler directly.
func New(cfg Config, registry *schema.Registry, store types.Backend, log *zap.SugaredLogger) *Server {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Listen == "" {
		cfg.Listen = types.DefaultListen
	}

	s := &Server{
		config:   cfg,
		registry: registry,
		store:    store,
		log:      logging.OrNop(log),
		now:      time.Now,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.loggingMiddleware())
	if len(cfg.CORSOrigins) > 0 {
		router.Use(s.corsMiddleware())
	}

	router.GET("/", s.health)
	api := router.Group("/api/:entity", s.resolveEntity())
	{
		api.GET("", s.list)
		api.POST("", s.create)
		api.GET("/:id", s.get)
		api.PUT("/:id", s.update)
		api.DELETE("/:id", s.remove)
	}
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	s.router = router
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Start binds the listen address and serves in the background. It returns
// once the listener is ready.
func (s *Server) Start(_ context.Context) error {
	ln, err := net.Listen("tcp", s.config.Listen)
	if err != nil {
		return err
	}

	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.log.Infow("API listening", "address", ln.Addr().String())
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Errorw("API server failed", "error", err)
		}
	}()
	return nil
}

// Stop gracefully stops the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.log.Info("Stopping API server")
	return s.server.Shutdown(ctx)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "service": ServiceName})
}

// loggingMiddleware logs every request.
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		s.log.Infow("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// corsMiddleware answers CORS preflights for the configured origins.
func (s *Server) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		for _, allowedOrigin := range s.config.CORSOrigins {
			if allowedOrigin == "*" || allowedOrigin == origin {
				c.Header("Access-Control-Allow-Origin", allowedOrigin)
				c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				c.Header("Access-Control-Allow-Headers", "Content-Type")

				break
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)

			return
		}

		c.Next()
	}
}
