package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskdesk/models"
	"github.com/taskdesk/services"
)

// AdminMiddleware creates a middleware that ensures the user has admin role
// This middleware should be used after AuthMiddleware
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "Authentication required",
			})
			c.Abort()
			return
		}

		if roleStr, ok := role.(string); !ok || models.Role(roleStr) != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{
				"status":  "error",
				"message": "Admin privileges required",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequirePermission rejects requests whose role lacks permission.
// Must run after AuthMiddleware.
func RequirePermission(permission services.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "Authentication required",
			})
			c.Abort()
			return
		}

		roleStr, _ := role.(string)
		actor := services.Actor{ID: c.GetString("userId"), Role: models.Role(roleStr)}
		if !actor.Can(permission) {
			c.JSON(http.StatusForbidden, gin.H{
				"status":  "error",
				"message": "You do not have permission to perform this action",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
