package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/board-result-api/internal/models"
	"github.com/noah-isme/board-result-api/internal/service"
)

func newAuthService() *service.AuthService {
	return service.NewAuthService(service.AuthConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
		Issuer:     "board-result-api",
	}, nil)
}

func protectedEngine(authSvc *service.AuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", JWT(authSvc), func(c *gin.Context) {
		claims := c.MustGet(ContextUserKey).(*models.JWTClaims)
		c.JSON(http.StatusOK, gin.H{"user_id": claims.UserID})
	})
	return r
}

func TestJWTAcceptsValidToken(t *testing.T) {
	authSvc := newAuthService()
	token, _, err := authSvc.GenerateToken("user-1", models.RoleTeacher, "t@school.test", "Teacher One")
	require.NoError(t, err)

	r := protectedEngine(authSvc)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-1")
}

func TestJWTRejectsMissingHeader(t *testing.T) {
	r := protectedEngine(newAuthService())
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTRejectsMalformedHeader(t *testing.T) {
	r := protectedEngine(newAuthService())
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTRejectsTokenSignedWithOtherSecret(t *testing.T) {
	other := service.NewAuthService(service.AuthConfig{Secret: "other", Expiration: time.Hour}, nil)
	token, _, err := other.GenerateToken("user-1", models.RoleAdmin, "a@school.test", "Admin")
	require.NoError(t, err)

	r := protectedEngine(newAuthService())
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
