package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/S-Corkum/search-gateway/internal/health"
)

func (s *Server) handleHealth(c *gin.Context) {
	snap := s.deps.Prober.Snapshot()
	status := http.StatusOK
	if snap.Status == health.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, snap)
}

func (s *Server) handleReady(c *gin.Context) {
	if !s.deps.Prober.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ready": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ready": true})
}
