package handler

import (
	"net/http"

	"runnerhub/internal/adapter/http/dto"
	"runnerhub/internal/core/domain"
	"runnerhub/internal/core/ports"
	"runnerhub/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReviewHandler handles review endpoints.
type ReviewHandler struct {
	reviewSvc ports.ReviewService
}

func NewReviewHandler(reviewSvc ports.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewSvc: reviewSvc}
}

// userReviews is the listing payload: the reviews plus their aggregate.
type userReviews struct {
	Summary domain.RatingSummary `json:"summary"`
	Reviews []domain.Review      `json:"reviews"`
}

// Submit handles POST /api/v1/reviews.
func (h *ReviewHandler) Submit(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req dto.SubmitReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	review, err := h.reviewSvc.Submit(c.Request.Context(), ports.SubmitReviewRequest{
		ReviewerID: a.UserID,
		TaskID:     uuid.MustParse(req.TaskID),
		Rating:     req.Rating,
		Comment:    req.Comment,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, review)
}

// ListForUser handles GET /api/v1/reviews/user/:userId.
func (h *ReviewHandler) ListForUser(c *gin.Context) {
	userID, ok := uuidParam(c, "userId")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	summary, err := h.reviewSvc.AverageFor(ctx, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	reviews, err := h.reviewSvc.ListFor(ctx, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, userReviews{Summary: summary, Reviews: reviews})
}

// Delete handles DELETE /api/v1/reviews/:id.
func (h *ReviewHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.reviewSvc.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
