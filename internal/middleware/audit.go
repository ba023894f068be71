package middleware

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/board-result-api/internal/models"
	"github.com/noah-isme/board-result-api/internal/repository"
)

// Activity records a UserActivityLog row for every authenticated request.
func Activity(repo *repository.AuditRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		claims, ok := c.Get(ContextUserKey)
		if !ok {
			return
		}
		user, ok := claims.(*models.JWTClaims)
		if !ok {
			return
		}

		_ = repo.CreateActivityLog(c.Request.Context(), &models.UserActivityLog{
			UserID:    user.UserID,
			Activity:  c.Request.Method + " " + c.FullPath(),
			Path:      c.Request.URL.Path,
			Method:    c.Request.Method,
			IPAddress: c.ClientIP(),
		})
	}
}

// Audit creates a middleware that records audit logs after successful requests.
func Audit(repo *repository.AuditRepository, action, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}

		var userID *string
		if claims, ok := c.Get(ContextUserKey); ok {
			user := claims.(*models.JWTClaims)
			userID = &user.UserID
		}

		var resourceID *string
		if id := c.Param("id"); id != "" {
			resourceID = &id
		}

		body, _ := json.Marshal(map[string]interface{}{
			"path":    c.FullPath(),
			"method":  c.Request.Method,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).Milliseconds(),
		})

		_ = repo.CreateAuditLog(c.Request.Context(), &models.AuditLog{
			UserID:     userID,
			Action:     action,
			Resource:   resource,
			ResourceID: resourceID,
			NewValues:  body,
			IPAddress:  c.ClientIP(),
			UserAgent:  c.GetHeader("User-Agent"),
		})
	}
}
