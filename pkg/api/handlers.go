package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polymind-ai/polymind/pkg/agent/steps"
	"github.com/polymind-ai/polymind/pkg/models"
	"github.com/polymind-ai/polymind/pkg/orchestrator"
	"github.com/polymind-ai/polymind/pkg/stream"
	"github.com/polymind-ai/polymind/pkg/version"
)

// Health reports liveness. No upstream probe: the engine holds no
// connections when idle.
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"version": version.Full(),
	})
}

// Modes lists the registered thinking modes for client UIs.
func (s *Server) Modes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"modes": steps.Modes()})
}

// Think runs one orchestration request. Envelope problems answer with plain
// HTTP errors; once the stream is open every failure arrives as an ERROR
// frame inside the 200 response.
func (s *Server) Think(c *gin.Context) {
	var req models.ThinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if err := orchestrator.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.applyModelDefaults(&req)

	h := c.Writer.Header()
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set("Cache-Control", "no-cache")
	h.Set("X-Accel-Buffering", "no")

	sink := stream.NewWriter(c.Writer, c.Writer)
	if err := s.orch.Run(c.Request.Context(), &req, sink); err != nil {
		// Nothing was streamed yet; a plain status is still possible.
		h.Set("Content-Type", "application/json; charset=utf-8")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// applyModelDefaults fills the auxiliary model settings from server
// configuration when the request omits them.
func (s *Server) applyModelDefaults(req *models.ThinkRequest) {
	if req.Data.AppSettings.SummarizerModel == nil && s.cfg.SummarizerModel != nil {
		req.Data.AppSettings.SummarizerModel = s.cfg.SummarizerModel
	}
	if req.Data.AppSettings.IntegratorModel == nil && s.cfg.IntegratorModel != nil {
		req.Data.AppSettings.IntegratorModel = s.cfg.IntegratorModel
	}
}
