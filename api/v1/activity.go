package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskdesk/dto"
	"github.com/taskdesk/middleware"
	"github.com/taskdesk/services"
	"go.uber.org/zap"
)

// ActivityController exposes the activity log
type ActivityController struct {
	activityService *services.ActivityService
	log             *zap.Logger
}

// NewActivityController creates a new activity controller
func NewActivityController(activityService *services.ActivityService, log *zap.Logger) *ActivityController {
	return &ActivityController{activityService: activityService, log: log}
}

// RegisterRoutes registers activity routes
func (ac *ActivityController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/activities", middleware.RequirePermission(services.PermissionViewActivity), ac.ListActivities)
}

// ListActivities returns the activity log, newest first
func (ac *ActivityController) ListActivities(c *gin.Context) {
	filter := dto.ActivityFilter{
		SubjectType: c.Query("subjectType"),
		SubjectID:   c.Query("subjectId"),
		ActorID:     c.Query("actorId"),
		Page:        queryInt(c, "page", 1),
		PageSize:    queryInt(c, "pageSize", 20),
	}

	response, err := ac.activityService.ListActivities(c.Request.Context(), filter)
	if err != nil {
		respondError(c, ac.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   response,
	})
}
