package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskdesk/dto"
	"github.com/taskdesk/middleware"
	"github.com/taskdesk/services"
	"go.uber.org/zap"
)

// UserController handles user administration
type UserController struct {
	authService *services.AuthService
	log         *zap.Logger
}

// NewUserController creates a new user controller
func NewUserController(authService *services.AuthService, log *zap.Logger) *UserController {
	return &UserController{authService: authService, log: log}
}

// RegisterRoutes registers user routes
func (uc *UserController) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	users.Use(middleware.AdminMiddleware())
	{
		users.PUT("/:id/role", uc.UpdateRole)
	}
}

// UpdateRole changes the role of a user
func (uc *UserController) UpdateRole(c *gin.Context) {
	var req dto.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c, err)
		return
	}

	user, err := uc.authService.SetRole(c.Request.Context(), actorFromContext(c), c.Param("id"), req.Role)
	if err != nil {
		respondError(c, uc.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"user":   user,
	})
}
