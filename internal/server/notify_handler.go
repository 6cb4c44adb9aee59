package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"senseact/internal/dao"
)

// handleNotify receives a notification from the worker and fans it out to
// the connected websocket observers.
func (s *Server) handleNotify(c *gin.Context) {
	var msg dao.NotifyMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		s.writeError(c, http.StatusBadRequest, err)
		return
	}

	s.hub.Broadcast(&msg)
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}
