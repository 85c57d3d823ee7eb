package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"runnerhub/internal/core/domain"
	"runnerhub/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type auditRule struct {
	method       string
	route        string // gin full path
	action       domain.AuditAction
	resourceType string
	param        string // path param holding the resource id
}

var auditRules = []auditRule{
	{http.MethodPost, "/api/v1/auth/signup", domain.AuditActionSignup, "user", ""},
	{http.MethodPost, "/api/v1/auth/login", domain.AuditActionLogin, "session", ""},
	{http.MethodPatch, "/api/v1/users/me", domain.AuditActionProfileUpdate, "user", ""},
	{http.MethodPost, "/api/v1/tasks", domain.AuditActionTaskPost, "task", ""},
	{http.MethodPut, "/api/v1/tasks/:id/accept", domain.AuditActionTaskAccept, "task", "id"},
	{http.MethodPut, "/api/v1/tasks/:id/complete", domain.AuditActionTaskComplete, "task", "id"},
	{http.MethodPut, "/api/v1/tasks/:id/cancel", domain.AuditActionTaskCancel, "task", "id"},
	{http.MethodPut, "/api/v1/tasks/:id/paid", domain.AuditActionTaskPaid, "task", "id"},
	{http.MethodPost, "/api/v1/wallet/topup", domain.AuditActionTopup, "wallet", ""},
	{http.MethodPost, "/api/v1/wallet/payout", domain.AuditActionPayout, "wallet", ""},
	{http.MethodPost, "/api/v1/reviews", domain.AuditActionReviewSubmit, "review", ""},
	{http.MethodDelete, "/api/v1/reviews/:id", domain.AuditActionReviewDelete, "review", "id"},
	{http.MethodPost, "/api/v1/payments/initiate", domain.AuditActionPaymentInitiate, "payment", ""},
	{http.MethodPost, "/api/v1/payments/verify", domain.AuditActionPaymentVerify, "payment", ""},
}

// AuditLog records successful write operations after the handler ran.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}

		action, resourceType, resourceID := mapRouteToAction(c)
		if action == "" {
			return
		}

		var userID *uuid.UUID
		if actor, ok := ActorFrom(c); ok {
			userID = &actor.UserID
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": status,
		})

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			ID:           uuid.New(),
			UserID:       userID,
			Action:       action,
			ResourceType: resourceType,
			ResourceID:   resourceID,
			IPAddress:    c.ClientIP(),
			Details:      string(details),
			CreatedAt:    time.Now(),
		})
	}
}

func mapRouteToAction(c *gin.Context) (domain.AuditAction, string, string) {
	route := c.FullPath()
	for _, r := range auditRules {
		if r.method != c.Request.Method || r.route != route {
			continue
		}
		var id string
		if r.param != "" {
			id = c.Param(r.param)
		}
		return r.action, r.resourceType, id
	}
	return "", "", ""
}
