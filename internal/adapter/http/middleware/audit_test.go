package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"runnerhub/internal/core/domain"
	"runnerhub/internal/core/ports/mocks"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestAuditLog_TaskAccept(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAudit := mocks.NewMockAuditService(ctrl)

	userID := uuid.New()
	taskID := uuid.New()
	done := make(chan struct{})
	mockAudit.EXPECT().Log(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, entry *domain.AuditLog) {
			assert.Equal(t, domain.AuditActionTaskAccept, entry.Action)
			assert.Equal(t, "task", entry.ResourceType)
			assert.Equal(t, taskID.String(), entry.ResourceID)
			if assert.NotNil(t, entry.UserID) {
				assert.Equal(t, userID, *entry.UserID)
			}
			close(done)
		},
	)

	r := gin.New()
	r.Use(AuditLog(mockAudit))
	r.PUT("/api/v1/tasks/:id/accept", func(c *gin.Context) {
		c.Set(CtxUserID, userID)
		c.Set(CtxRole, domain.RoleRunner)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/v1/tasks/"+taskID.String()+"/accept", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("audit not called")
	}
}

func TestAuditLog_Signup_Anonymous(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAudit := mocks.NewMockAuditService(ctrl)
	mockAudit.EXPECT().Log(gomock.Any(), gomock.Any()).Do(func(_ context.Context, entry *domain.AuditLog) {
		assert.Equal(t, domain.AuditActionSignup, entry.Action)
		assert.Nil(t, entry.UserID)
	})

	r := gin.New()
	r.Use(AuditLog(mockAudit))
	r.POST("/api/v1/auth/signup", func(c *gin.Context) { c.Status(http.StatusCreated) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", nil))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestAuditLog_Skips(t *testing.T) {
	tests := []struct {
		name   string
		method string
		route  string
		status int
	}{
		{"read", http.MethodGet, "/api/v1/tasks/:id", http.StatusOK},
		{"failed write", http.MethodPost, "/api/v1/wallet/payout", http.StatusBadRequest},
		{"unmapped write", http.MethodPut, "/api/v1/users/me/location", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockAudit := mocks.NewMockAuditService(ctrl)

			r := gin.New()
			r.Use(AuditLog(mockAudit))
			r.Handle(tt.method, tt.route, func(c *gin.Context) { c.Status(tt.status) })

			path := tt.route
			if path == "/api/v1/tasks/:id" {
				path = "/api/v1/tasks/" + uuid.NewString()
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, path, nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
