package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/board-result-api/internal/models"
)

func rbacEngine(claims *models.JWTClaims, guard gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/resource/:userId", func(c *gin.Context) {
		if claims != nil {
			c.Set(ContextUserKey, claims)
		}
		c.Next()
	}, guard, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestRequireRolesAllowsListedRole(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u1", Role: models.RoleTeacher}
	w := get(rbacEngine(claims, RequireRoles(models.RoleAdmin, models.RoleTeacher)), "/resource/r1")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRolesForbidsOtherRole(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u1", Role: models.RoleStudent}
	w := get(rbacEngine(claims, RequireRoles(models.RoleAdmin)), "/resource/r1")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRolesOrSelfMatchesPathParam(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u1", Role: models.RoleStudent}
	w := get(rbacEngine(claims, RolesOrSelf("userId", models.RoleAdmin)), "/resource/u1")
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(rbacEngine(claims, RolesOrSelf("userId", models.RoleAdmin)), "/resource/u2")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRolesOrSelfAdmitsStaffForAnyTarget(t *testing.T) {
	claims := &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}
	w := get(rbacEngine(claims, RolesOrSelf("userId", models.RoleAdmin)), "/resource/u2")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRolesRequiresClaims(t *testing.T) {
	w := get(rbacEngine(nil, RequireRoles(models.RoleAdmin)), "/resource/r1")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
