package handler

import (
	"runnerhub/internal/core/ports"
	"runnerhub/pkg/response"

	"github.com/gin-gonic/gin"
)

type MatchingHandler struct {
	matchingSvc ports.MatchingService
}

func NewMatchingHandler(matchingSvc ports.MatchingService) *MatchingHandler {
	return &MatchingHandler{matchingSvc: matchingSvc}
}

// BestRunner handles GET /api/v1/matching/:taskId.
func (h *MatchingHandler) BestRunner(c *gin.Context) {
	taskID, ok := uuidParam(c, "taskId")
	if !ok {
		return
	}
	match, err := h.matchingSvc.BestRunner(c.Request.Context(), taskID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, match)
}
