package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskdesk/dto"
	"github.com/taskdesk/middleware"
	"github.com/taskdesk/models"
	"github.com/taskdesk/services"
	"go.uber.org/zap"
)

// TaskController handles task endpoints
type TaskController struct {
	taskService *services.TaskService
	log         *zap.Logger
}

// NewTaskController creates a new task controller
func NewTaskController(taskService *services.TaskService, log *zap.Logger) *TaskController {
	return &TaskController{taskService: taskService, log: log}
}

// RegisterRoutes registers task routes
func (tc *TaskController) RegisterRoutes(router *gin.RouterGroup) {
	tasks := router.Group("/tasks")
	{
		tasks.GET("/:id", tc.GetTask)
		tasks.PUT("/:id", tc.UpdateTask)
		tasks.PATCH("/:id/status", tc.ChangeTaskStatus)
		tasks.DELETE("/:id", tc.DeleteTask)
		tasks.POST("/:id/restore", middleware.RequirePermission(services.PermissionRestoreTask), tc.RestoreTask)
	}

	// Also add project-specific task routes
	projects := router.Group("/projects")
	{
		projects.GET("/:id/tasks", tc.ListProjectTasks)
		projects.POST("/:id/tasks", tc.CreateTask)
	}
}

// ListProjectTasks retrieves the tasks of a project
func (tc *TaskController) ListProjectTasks(c *gin.Context) {
	filter := dto.TaskFilter{
		ProjectID:  c.Param("id"),
		AssigneeID: c.Query("assigneeId"),
		Status:     models.Status(c.Query("status")),
		Search:     c.Query("search"),
		Trashed:    trashedQuery(c),
		SortBy:     c.DefaultQuery("sortBy", "created_at"),
		SortOrder:  c.DefaultQuery("sortOrder", "desc"),
		Page:       queryInt(c, "page", 1),
		PageSize:   queryInt(c, "pageSize", 10),
	}

	response, err := tc.taskService.ListTasks(c.Request.Context(), filter)
	if err != nil {
		respondError(c, tc.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   response,
	})
}

// GetTask retrieves a task by ID
func (tc *TaskController) GetTask(c *gin.Context) {
	task, err := tc.taskService.GetTask(c.Request.Context(), c.Param("id"), trashedQuery(c) != dto.TrashedWithout)
	if err != nil {
		respondError(c, tc.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   dto.NewTaskResponse(task),
	})
}

// CreateTask adds a task to a project
func (tc *TaskController) CreateTask(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c, err)
		return
	}

	task, err := tc.taskService.CreateTask(c.Request.Context(), actorFromContext(c), c.Param("id"), req)
	if err != nil {
		respondError(c, tc.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "Task created successfully",
		"data":    dto.NewTaskResponse(task),
	})
}

// UpdateTask edits a task. A restored task must change status first.
func (tc *TaskController) UpdateTask(c *gin.Context) {
	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c, err)
		return
	}

	ctx := c.Request.Context()
	current, err := tc.taskService.GetTask(ctx, c.Param("id"), false)
	if err != nil {
		respondError(c, tc.log, err)
		return
	}
	if err := tc.taskService.EnsureEditable(current); err != nil {
		respondError(c, tc.log, err)
		return
	}

	task, err := tc.taskService.UpdateTask(ctx, actorFromContext(c), current.ID, req)
	if err != nil {
		respondError(c, tc.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Task updated successfully",
		"data":    dto.NewTaskResponse(task),
	})
}

// ChangeTaskStatus moves a task to another status
func (tc *TaskController) ChangeTaskStatus(c *gin.Context) {
	var req dto.ChangeTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c, err)
		return
	}

	task, err := tc.taskService.ChangeTaskStatus(c.Request.Context(), actorFromContext(c), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, tc.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   dto.NewTaskResponse(task),
	})
}

// DeleteTask soft-deletes a single task
func (tc *TaskController) DeleteTask(c *gin.Context) {
	task, err := tc.taskService.DeleteTask(c.Request.Context(), actorFromContext(c), c.Param("id"), false)
	if err != nil {
		respondError(c, tc.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Task deleted successfully",
		"data":    dto.NewTaskResponse(task),
	})
}

// RestoreTask brings back a trashed task
func (tc *TaskController) RestoreTask(c *gin.Context) {
	task, err := tc.taskService.RestoreTask(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		respondError(c, tc.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Task restored successfully",
		"data":    dto.NewTaskResponse(task),
	})
}
