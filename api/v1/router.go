package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/taskdesk/middleware"
	"github.com/taskdesk/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies are the services the v1 handlers are built on
type Dependencies struct {
	DB         *gorm.DB
	Auth       *services.AuthService
	Projects   *services.ProjectService
	Tasks      *services.TaskService
	Images     *services.ImageService
	Activities *services.ActivityService
	Log        *zap.Logger
}

// RegisterRoutes registers all v1 API routes
func RegisterRoutes(router *gin.RouterGroup, deps Dependencies) {
	// Health check endpoint
	router.GET("/health", HealthCheck(deps.DB))

	NewAuthController(deps.Auth, deps.Log).RegisterRoutes(router)

	// Everything below requires a valid token
	authRouter := router.Group("")
	authRouter.Use(middleware.AuthMiddleware(deps.Auth), requireUUIDParams("id", "imageId"))

	NewProjectController(deps.Projects, deps.Log).RegisterRoutes(authRouter)
	NewTaskController(deps.Tasks, deps.Log).RegisterRoutes(authRouter)
	NewImageController(deps.Images, deps.Log).RegisterRoutes(authRouter)
	NewActivityController(deps.Activities, deps.Log).RegisterRoutes(authRouter)
	NewUserController(deps.Auth, deps.Log).RegisterRoutes(authRouter)
}
