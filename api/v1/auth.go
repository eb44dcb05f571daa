package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskdesk/dto"
	"github.com/taskdesk/middleware"
	"github.com/taskdesk/services"
	"go.uber.org/zap"
)

// AuthController handles registration, login and the current user profile
type AuthController struct {
	authService *services.AuthService
	log         *zap.Logger
}

// NewAuthController creates a new auth controller
func NewAuthController(authService *services.AuthService, log *zap.Logger) *AuthController {
	return &AuthController{authService: authService, log: log}
}

// RegisterRoutes registers auth routes
func (ac *AuthController) RegisterRoutes(router *gin.RouterGroup) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", ac.Register)
		authGroup.POST("/login", ac.Login)
		authGroup.POST("/logout", Logout)
		// Use auth middleware here only for the /me endpoint
		authGroup.GET("/me", middleware.AuthMiddleware(ac.authService), ac.GetCurrentUser)
	}
}

// Register handles user registration
func (ac *AuthController) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c, err)
		return
	}

	user, err := ac.authService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, ac.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "User registered successfully",
		"user":    user,
	})
}

// Login handles user authentication
func (ac *AuthController) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c, err)
		return
	}

	authResponse, err := ac.authService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, ac.log, err)
		return
	}

	maxAge := int(time.Until(authResponse.ExpiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = 86400
	}

	// Set token as HttpOnly cookie
	c.SetCookie("access_token", authResponse.Token, maxAge, "/", "", true, true)

	// Also return token in response body for clients that prefer Bearer auth
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   authResponse,
	})
}

// GetCurrentUser returns the currently authenticated user's profile
func (ac *AuthController) GetCurrentUser(c *gin.Context) {
	user, err := ac.authService.GetUser(c.Request.Context(), c.GetString("userId"))
	if err != nil {
		respondError(c, ac.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"user":   user,
	})
}
