package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Logout handles user logout
func Logout(c *gin.Context) {
	// Clear the cookie by setting max-age to -1 (expired)
	c.SetCookie("access_token", "", -1, "/", "", true, true)

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Logged out successfully",
	})
}
