package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/taskdesk/dto"
	"github.com/taskdesk/models"
	"github.com/taskdesk/services"
)

// actorFromContext builds the acting user from the claims set by AuthMiddleware
func actorFromContext(c *gin.Context) services.Actor {
	return services.Actor{
		ID:   c.GetString("userId"),
		Role: models.Role(c.GetString("role")),
	}
}

func queryInt(c *gin.Context, key string, fallback int) int {
	n, err := strconv.Atoi(c.DefaultQuery(key, strconv.Itoa(fallback)))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// trashedQuery reads the trashed filter ("with" or "only")
func trashedQuery(c *gin.Context) string {
	switch t := c.Query("trashed"); t {
	case dto.TrashedWith, dto.TrashedOnly:
		return t
	default:
		return dto.TrashedWithout
	}
}

// requireUUIDParams answers 404 for path IDs that cannot exist, before
// they reach a uuid column
func requireUUIDParams(names ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, name := range names {
			value := c.Param(name)
			if value == "" {
				continue
			}
			if _, err := uuid.Parse(value); err != nil {
				c.JSON(http.StatusNotFound, gin.H{
					"status":  "error",
					"message": "Resource not found",
				})
				c.Abort()
				return
			}
		}
		c.Next()
	}
}
