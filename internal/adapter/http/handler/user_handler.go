package handler

import (
	"runnerhub/internal/adapter/http/dto"
	"runnerhub/internal/core/ports"
	"runnerhub/pkg/response"

	"github.com/gin-gonic/gin"
)

// UserHandler serves the caller's own profile.
type UserHandler struct {
	userSvc ports.UserService
}

func NewUserHandler(userSvc ports.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// Me handles GET /api/v1/users/me.
func (h *UserHandler) Me(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	user, err := h.userSvc.GetProfile(c.Request.Context(), a.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, user)
}

// UpdateMe handles PATCH /api/v1/users/me. Unknown fields are ignored.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userSvc.UpdateProfile(c.Request.Context(), a.UserID, ports.ProfileUpdate{Name: req.Name})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, user)
}

// UpdateLocation handles PUT /api/v1/users/me/location.
func (h *UserHandler) UpdateLocation(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req dto.Location
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userSvc.UpdateLocation(c.Request.Context(), a.UserID, req.GeoPoint())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, user)
}
