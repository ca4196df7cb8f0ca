// Package api exposes the engine over HTTP: the streaming think endpoint,
// the mode listing and a health probe.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polymind-ai/polymind/pkg/config"
	"github.com/polymind-ai/polymind/pkg/orchestrator"
)

// Server wires the HTTP routes to the orchestrator.
type Server struct {
	cfg    *config.Config
	orch   *orchestrator.Orchestrator
	logger *slog.Logger
	engine *gin.Engine
}

// NewServer builds the server and its routes.
func NewServer(cfg *config.Config, orch *orchestrator.Orchestrator, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestID(), requestLogger(logger), securityHeaders())

	s := &Server{cfg: cfg, orch: orch, logger: logger, engine: engine}

	engine.GET("/healthz", s.Health)
	engine.GET("/api/modes", s.Modes)
	engine.POST("/api/think", s.Think)
	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// HTTPServer returns a configured http.Server bound to the configured
// address. Write timeout is absent: think responses stream for as long as
// generation runs.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
