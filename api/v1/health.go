package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HealthCheck reports service status and database reachability
func HealthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		database := "ok"
		if err := pingDatabase(c.Request.Context(), db); err != nil {
			database = "unavailable"
		}

		code, status := http.StatusOK, "ok"
		if database != "ok" {
			code, status = http.StatusServiceUnavailable, "degraded"
		}

		c.JSON(code, gin.H{
			"status":   status,
			"service":  "taskdesk-api",
			"version":  "1.0.0",
			"database": database,
		})
	}
}

func pingDatabase(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
