package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/academy/backend/internal/domain/billing"
	"github.com/academy/backend/internal/infrastructure/auth"
	"github.com/academy/backend/internal/infrastructure/config"
	"github.com/academy/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService(expiration time.Duration) *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		Issuer:                "academy-identity",
		AccessTokenExpiration: expiration,
	})
}

func newTestToken(t *testing.T, svc *auth.JWTService) (string, auth.GenerateTokenInput) {
	t.Helper()
	input := auth.GenerateTokenInput{
		UserID:   uuid.New(),
		Username: "cajera.centro",
		Roles:    []string{auth.RoleAdminRestricted},
	}
	token, _, err := svc.GenerateAccessToken(input)
	require.NoError(t, err)
	return token, input
}

func newJWTRouter(svc *auth.JWTService, handler gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), JWTAuthMiddleware(svc))
	router.GET("/test", handler)
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	token, input := newTestToken(t, svc)

	var actor *billing.Actor
	var ctxActorID string
	router := newJWTRouter(svc, func(c *gin.Context) {
		actor = GetActor(c)
		ctxActorID = logger.GetActorID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, actor)
	assert.Equal(t, input.UserID, actor.ID)
	assert.Equal(t, []string{auth.RoleAdminRestricted}, actor.Roles)
	assert.Equal(t, input.UserID.String(), ctxActorID)
}

func TestJWTAuthMiddleware_Rejections(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	expiredToken, _ := newTestToken(t, newTestJWTService(-time.Minute))
	otherIssuer := auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		Issuer:                "someone-else",
		AccessTokenExpiration: time.Minute,
	})
	foreignToken, _ := newTestToken(t, otherIssuer)

	tests := []struct {
		name    string
		header  string
		message string
	}{
		{"missing header", "", "Authentication required"},
		{"not a bearer", "Basic dXNlcjpwYXNz", "Authentication required"},
		{"empty bearer", BearerPrefix, "Authentication required"},
		{"garbage token", BearerPrefix + "not.a.jwt", "Invalid token"},
		{"expired token", BearerPrefix + expiredToken, "Token has expired"},
		{"wrong issuer", BearerPrefix + foreignToken, "Invalid token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			router := newJWTRouter(svc, func(c *gin.Context) { called = true })

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set(AuthHeaderKey, tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.False(t, called)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), `"code":"unauthenticated"`)
			assert.Contains(t, rec.Body.String(), tt.message)
			assert.Contains(t, rec.Body.String(), `"request_id"`)
		})
	}
}

func TestJWTAuthMiddleware_SkipPaths(t *testing.T) {
	router := newJWTRouter(newTestJWTService(time.Minute), func(c *gin.Context) {})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTAuthMiddleware_OnError(t *testing.T) {
	cfg := DefaultJWTConfig(newTestJWTService(time.Minute))
	cfg.OnError = func(c *gin.Context, err error) {
		c.AbortWithStatus(http.StatusTeapot)
	}
	router := gin.New()
	router.Use(JWTAuthMiddlewareWithConfig(cfg))
	router.GET("/test", func(c *gin.Context) {})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestGetActor_Absent(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, GetActor(c))
	assert.Nil(t, GetJWTClaims(c))
}
