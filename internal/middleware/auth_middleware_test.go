package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tabletime/tabletime-backend/internal/app/model"
	"github.com/tabletime/tabletime-backend/pkg/util"
)

const testJWTSecret = "test-jwt-secret-for-middleware"

type fakeBlacklist struct {
	revoked map[string]bool
	err     error
}

func (b *fakeBlacklist) IsRevoked(_ context.Context, token string) (bool, error) {
	return b.revoked[token], b.err
}

func setupMiddlewareTest(blacklist RevocationChecker) (*gin.Engine, *AuthMiddleware) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(LoggingMiddleware())
	return router, NewAuthMiddleware(testJWTSecret, blacklist)
}

func generateTestToken(t *testing.T, userID uint, email string, role model.UserRole) string {
	token, _, err := util.GenerateAccessToken(userID, email, string(role), testJWTSecret, 15*time.Minute)
	require.NoError(t, err)
	return token
}

func echoPrincipal(c *gin.Context) {
	userID, _ := GetUserID(c)
	email, _ := GetUserEmail(c)
	role, _ := GetUserRole(c)
	token, expiresAt, _ := GetToken(c)
	c.JSON(http.StatusOK, gin.H{
		"user_id":    userID,
		"email":      email,
		"role":       role,
		"has_token":  token != "",
		"expires_at": expiresAt,
	})
}

func TestAuthMiddleware_Authenticate_TokenSources(t *testing.T) {
	router, auth := setupMiddlewareTest(nil)
	router.GET("/test", auth.Authenticate(), echoPrincipal)
	token := generateTestToken(t, 7, "owner@example.com", model.RoleRestaurantOwner)

	tests := []struct {
		name  string
		setup func(r *http.Request)
	}{
		{name: "Bearer header", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }},
		{name: "Raw token header", setup: func(r *http.Request) { r.Header.Set("token", token) }},
		{name: "Query parameter", setup: func(r *http.Request) { r.URL.RawQuery = "token=" + token }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), `"user_id":7`)
			assert.Contains(t, w.Body.String(), `"role":"restaurantOwner"`)
			assert.Contains(t, w.Body.String(), `"has_token":true`)
			assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
		})
	}
}

func TestAuthMiddleware_Authenticate_Rejections(t *testing.T) {
	router, auth := setupMiddlewareTest(nil)
	router.GET("/test", auth.Authenticate(), echoPrincipal)

	expired, _, err := util.GenerateAccessToken(1, "a@example.com", "user", testJWTSecret, -time.Minute)
	require.NoError(t, err)
	confirmation, err := util.GenerateConfirmationToken(1, "a@example.com", testJWTSecret, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		wantCode string
	}{
		{name: "Missing token", header: "", wantCode: "AUTH_TOKEN_MISSING"},
		{name: "Missing Bearer prefix", header: "invalid-token", wantCode: "AUTH_TOKEN_INVALID"},
		{name: "Wrong prefix", header: "Basic token123", wantCode: "AUTH_TOKEN_INVALID"},
		{name: "Empty token", header: "Bearer ", wantCode: "AUTH_TOKEN_INVALID"},
		{name: "Garbage token", header: "Bearer invalid.jwt.token", wantCode: "AUTH_TOKEN_INVALID"},
		{name: "Expired token", header: "Bearer " + expired, wantCode: "AUTH_TOKEN_EXPIRED"},
		{name: "Confirmation token", header: "Bearer " + confirmation, wantCode: "AUTH_TOKEN_INVALID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantCode)
			assert.Contains(t, w.Body.String(), `"location":"middleware.Authenticate"`)
		})
	}
}

func TestAuthMiddleware_Authenticate_Blacklist(t *testing.T) {
	token := generateTestToken(t, 1, "user@example.com", model.RoleUser)

	router, auth := setupMiddlewareTest(&fakeBlacklist{revoked: map[string]bool{token: true}})
	router.GET("/test", auth.Authenticate(), echoPrincipal)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_TOKEN_REVOKED")

	router, auth = setupMiddlewareTest(&fakeBlacklist{err: errors.New("redis down")})
	router.GET("/test", auth.Authenticate(), echoPrincipal)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAuthMiddleware_RequireRole(t *testing.T) {
	router, auth := setupMiddlewareTest(nil)
	router.GET("/owner",
		auth.Authenticate(),
		auth.RequireRole(model.RoleRestaurantOwner),
		func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "owner access granted"})
		},
	)

	tests := []struct {
		name     string
		role     model.UserRole
		wantCode int
	}{
		{name: "Owner passes", role: model.RoleRestaurantOwner, wantCode: http.StatusOK},
		{name: "User is forbidden", role: model.RoleUser, wantCode: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/owner", nil)
			req.Header.Set("Authorization", "Bearer "+generateTestToken(t, 1, "x@example.com", tt.role))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestLoggingMiddleware_KeepsIncomingRequestID(t *testing.T) {
	router, _ := setupMiddlewareTest(nil)
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Body.String())
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
}
