package handler

import (
	"time"

	"runnerhub/internal/adapter/http/dto"
	"runnerhub/internal/adapter/http/middleware"
	"runnerhub/internal/core/ports"
	"runnerhub/pkg/apperror"
	"runnerhub/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// actor returns the authenticated caller or writes a 401.
func actor(c *gin.Context) (ports.Actor, bool) {
	a, ok := middleware.ActorFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
	}
	return a, ok
}

// uuidParam parses a path parameter or writes a 400.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Error(c, apperror.Validation("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON binds, validates and sanitizes a JSON body or writes a 400.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return false
	}
	dto.SanitizeStruct(req)
	return true
}

func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return false
	}
	return true
}

func optionalUUID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id := uuid.MustParse(s) // validated by the binding tag
	return &id
}

// dayBounds turns validated YYYY-MM-DD filters into an inclusive UTC range.
func dayBounds(from, to string) (*time.Time, *time.Time) {
	var f, t *time.Time
	if from != "" {
		v, _ := time.Parse(dateLayout, from)
		f = &v
	}
	if to != "" {
		v, _ := time.Parse(dateLayout, to)
		v = v.Add(24*time.Hour - time.Nanosecond)
		t = &v
	}
	return f, t
}
