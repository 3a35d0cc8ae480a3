package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"exam_proctor_backend/internal/config"
	"exam_proctor_backend/internal/model"
	"exam_proctor_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authTestConfig() *config.Config {
	return &config.Config{JWT: config.JWTConfig{Secret: "test-secret"}}
}

func claimsRecorder(router *gin.Engine, mw gin.HandlerFunc, got **util.Claims) {
	router.GET("/optional", mw, func(c *gin.Context) {
		*got = util.GetUserFromContext(c)
		c.Status(http.StatusOK)
	})
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/x", AuthMiddleware(authTestConfig()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTryAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := authTestConfig()

	user := &model.User{Name: "Sam", Email: "sam@example.com", Role: model.Candidate}
	user.ID = 7
	token, err := util.GenerateJWT(user, cfg.JWT.Secret, time.Hour)
	require.NoError(t, err)

	var got *util.Claims
	router := gin.New()
	claimsRecorder(router, TryAuthMiddleware(cfg), &got)

	// No token: the request passes and carries no identity.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/optional", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, got)

	// Valid token: claims land in the context.
	req := httptest.NewRequest(http.MethodGet, "/optional", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got)
	assert.Equal(t, uint(7), got.UserID)

	// Garbage token: still a pass, just anonymous.
	got = nil
	req = httptest.NewRequest(http.MethodGet, "/optional", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, got)
}
