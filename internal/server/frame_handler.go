package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"senseact/internal/dao"
	"senseact/internal/model"
)

func (s *Server) handleListFrames(c *gin.Context) {
	req := &dao.ListFramesRequest{}
	if err := c.ShouldBindQuery(req); err != nil {
		s.writeError(c, http.StatusBadRequest, err)
		return
	}
	if req.Limit == 0 {
		req.Limit = 20
	}

	frames, total, err := model.ListFrames(req.DeviceId, req.Start, req.Limit)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, dao.ListFramesResponse{
		Items: frames,
		Total: total,
	})
}
