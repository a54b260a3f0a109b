// Package server is the HTTP layer: one query endpoint plus health and
// metrics. All pipeline behavior lives in the orchestrator; handlers only
// translate JSON.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quanterra/finassist/config"
	"github.com/quanterra/finassist/orchestrator"
)

// Server hosts the assistant pipeline over HTTP.
type Server struct {
	cfg  config.ServerConfig
	orch *orchestrator.Orchestrator
	http *http.Server
}

type queryRequest struct {
	Query     string `json:"query" binding:"required"`
	SessionID string `json:"session_id" binding:"required"`
}

// NewServer creates the server around an already-wired orchestrator.
func NewServer(cfg config.ServerConfig, orch *orchestrator.Orchestrator) *Server {
	s := &Server{cfg: cfg, orch: orch}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Logger(), s.recovery())

	router.POST("/api/query", s.handleQuery)
	router.GET("/health", s.handleHealth)
	router.GET("/api/stats", s.handleStats)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.http = &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: time.Duration(cfg.RequestTimeoutSeconds+5) * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start blocks serving requests until the listener fails or Shutdown is
// called.
func (s *Server) Start() error {
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleQuery(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query and session_id are required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(),
		time.Duration(s.cfg.RequestTimeoutSeconds)*time.Second)
	defer cancel()

	resp := s.orch.Process(ctx, req.Query, req.SessionID)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "finassist"})
}

func (s *Server) handleStats(c *gin.Context) {
	counts, err := s.orch.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pii_detections_by_type": counts})
}

// recovery reports panics to Sentry and returns a generic 500. The
// orchestrator has its own recover, so this only catches handler-level
// bugs.
func (s *Server) recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				sentry.CurrentHub().Recover(r)
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					gin.H{"error": "internal server error"})
			}
		}()
		c.Next()
	}
}
