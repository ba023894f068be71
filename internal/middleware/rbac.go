package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/board-result-api/internal/models"
	appErrors "github.com/noah-isme/board-result-api/pkg/errors"
	"github.com/noah-isme/board-result-api/pkg/response"
)

// RequireRoles rejects requests whose authenticated role is not in the
// allowed set.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := roleSet(roles)
	return func(c *gin.Context) {
		claims, ok := requestClaims(c)
		if !ok {
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RolesOrSelf admits the allowed roles, or any authenticated user whose
// id matches the named path parameter. Students reach their own
// records this way without staff privileges.
func RolesOrSelf(param string, roles ...models.UserRole) gin.HandlerFunc {
	allowed := roleSet(roles)
	return func(c *gin.Context) {
		claims, ok := requestClaims(c)
		if !ok {
			return
		}
		if _, ok := allowed[claims.Role]; ok {
			c.Next()
			return
		}
		if target := c.Param(param); target != "" && target == claims.UserID {
			c.Next()
			return
		}
		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}

func roleSet(roles []models.UserRole) map[models.UserRole]struct{} {
	set := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

func requestClaims(c *gin.Context) (*models.JWTClaims, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		response.Error(c, appErrors.ErrUnauthorized)
		c.Abort()
		return nil, false
	}
	return value.(*models.JWTClaims), true
}
