package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"runnerhub/internal/core/domain"
	"runnerhub/internal/core/ports"
	"runnerhub/internal/core/ports/mocks"
	"runnerhub/pkg/apperror"
	"runnerhub/pkg/logger"
	"runnerhub/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestJWTAuth_MissingHeader(t *testing.T) {
	ctrl := gomock.NewController(t)
	tokenSvc := mocks.NewMockTokenService(ctrl)

	r := gin.New()
	r.GET("/me", JWTAuth(tokenSvc), func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, h := range []string{"", "Bearer ", "Basic abc"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if h != "" {
			req.Header.Set("Authorization", h)
		}
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", h)
		assert.Contains(t, w.Body.String(), "AUTH_003")
	}
}

func TestJWTAuth_InvalidToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	tokenSvc := mocks.NewMockTokenService(ctrl)
	tokenSvc.EXPECT().Validate("bad").Return(nil, errors.New("token is expired"))

	r := gin.New()
	r.GET("/me", JWTAuth(tokenSvc), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer bad")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"error_code":"AUTH_003"`)
	assert.NotContains(t, w.Body.String(), "token is expired")
}

func TestJWTAuth_SetsActor(t *testing.T) {
	ctrl := gomock.NewController(t)
	tokenSvc := mocks.NewMockTokenService(ctrl)
	userID := uuid.New()
	tokenSvc.EXPECT().Validate("good").Return(&ports.TokenClaims{UserID: userID, Role: domain.RoleRunner}, nil)

	var got ports.Actor
	r := gin.New()
	r.GET("/me", JWTAuth(tokenSvc), func(c *gin.Context) {
		got, _ = ActorFrom(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ports.Actor{UserID: userID, Role: domain.RoleRunner}, got)
}

func withActor(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(CtxUserID, uuid.New())
		c.Set(CtxRole, role)
		c.Next()
	}
}

func TestRequireCapability(t *testing.T) {
	tests := []struct {
		name string
		role domain.Role
		caps []domain.Capability
		code int
	}{
		{"client posts", domain.RoleClient, []domain.Capability{domain.CapPostTask}, http.StatusOK},
		{"runner cannot post", domain.RoleRunner, []domain.Capability{domain.CapPostTask}, http.StatusForbidden},
		{"admin cannot accept", domain.RoleAdmin, []domain.Capability{domain.CapRunTask}, http.StatusForbidden},
		{"any of", domain.RoleAdmin, []domain.Capability{domain.CapPostTask, domain.CapViewAnalytics}, http.StatusOK},
		{"superadmin views analytics", domain.RoleSuperAdmin, []domain.Capability{domain.CapViewAnalytics}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/x", withActor(tt.role), RequireCapability(tt.caps...), func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestRequireCapability_Unauthenticated(t *testing.T) {
	r := gin.New()
	r.GET("/x", RequireCapability(domain.CapPostTask), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { response.OK(c, nil) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "req-42")
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get(HeaderRequestID))
	assert.Contains(t, w.Body.String(), `"request_id":"req-42"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	_, err := uuid.Parse(w.Header().Get(HeaderRequestID))
	assert.NoError(t, err)
}

func TestRequestLogger_RecordsError(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter("info", &buf)

	r := gin.New()
	r.Use(RequestLogger(log))
	r.GET("/boom", func(c *gin.Context) {
		response.Error(c, apperror.InternalError(errors.New("db down")))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db down")
	assert.Contains(t, buf.String(), "db down")
	assert.Contains(t, buf.String(), `"status":500`)
	assert.Contains(t, buf.String(), `"path":"/boom"`)
}

func TestRecovery_PanicRecovered(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(zerolog.Nop()))
	r.GET("/panic", func(c *gin.Context) { panic("test panic") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "SYS_001")
	assert.NotContains(t, w.Body.String(), "test panic")
}
