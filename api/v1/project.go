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

// ProjectController handles project endpoints
type ProjectController struct {
	projectService *services.ProjectService
	log            *zap.Logger
}

// NewProjectController creates a new project controller
func NewProjectController(projectService *services.ProjectService, log *zap.Logger) *ProjectController {
	return &ProjectController{projectService: projectService, log: log}
}

// RegisterRoutes registers project routes
func (pc *ProjectController) RegisterRoutes(router *gin.RouterGroup) {
	projects := router.Group("/projects")
	{
		projects.GET("", pc.ListProjects)
		projects.POST("", pc.CreateProject)
		projects.GET("/:id", pc.GetProject)
		projects.PUT("/:id", pc.UpdateProject)
		projects.DELETE("/:id", middleware.RequirePermission(services.PermissionDeleteProject), pc.DeleteProject)
		projects.POST("/:id/restore", middleware.RequirePermission(services.PermissionRestoreProject), pc.RestoreProject)
		projects.DELETE("/:id/force", middleware.RequirePermission(services.PermissionForceDeleteProject), pc.ForceDeleteProject)
	}
}

// ListProjects godoc
// @Summary List projects with pagination and filtering
// @Tags projects
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Param search query string false "Search term for project title/description"
// @Param status query string false "Project status"
// @Param managerId query string false "Manager user ID"
// @Param trashed query string false "Include trashed projects (with|only)"
// @Param sortBy query string false "Field to sort by (created_at, updated_at, due_date, title, status)"
// @Param sortOrder query string false "Sort order (asc or desc)"
// @Success 200 {object} dto.ProjectListResponse
// @Router /projects [get]
func (pc *ProjectController) ListProjects(c *gin.Context) {
	filter := dto.ProjectFilter{
		Search:    c.Query("search"),
		Status:    models.Status(c.Query("status")),
		ManagerID: c.Query("managerId"),
		Trashed:   trashedQuery(c),
		SortBy:    c.DefaultQuery("sortBy", "created_at"),
		SortOrder: c.DefaultQuery("sortOrder", "desc"),
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "pageSize", 10),
	}

	response, err := pc.projectService.ListProjects(c.Request.Context(), filter)
	if err != nil {
		respondError(c, pc.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   response,
	})
}

// GetProject godoc
// @Summary Get a project by ID
// @Tags projects
// @Param id path string true "Project ID"
// @Param trashed query string false "Set to 'with' to fetch a trashed project"
// @Success 200 {object} dto.ProjectResponse
// @Router /projects/{id} [get]
func (pc *ProjectController) GetProject(c *gin.Context) {
	project, err := pc.projectService.GetProject(c.Request.Context(), c.Param("id"), trashedQuery(c) != dto.TrashedWithout)
	if err != nil {
		respondError(c, pc.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   dto.NewProjectResponse(project),
	})
}

// CreateProject godoc
// @Summary Create a new project
// @Tags projects
// @Param project body dto.CreateProjectRequest true "Project data"
// @Success 201 {object} dto.ProjectResponse
// @Router /projects [post]
func (pc *ProjectController) CreateProject(c *gin.Context) {
	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c, err)
		return
	}

	project, err := pc.projectService.CreateProject(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		respondError(c, pc.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "Project created successfully",
		"data":    dto.NewProjectResponse(project),
	})
}

// UpdateProject godoc
// @Summary Update a project
// @Tags projects
// @Param id path string true "Project ID"
// @Param project body dto.UpdateProjectRequest true "Fields to change"
// @Success 200 {object} dto.ProjectResponse
// @Router /projects/{id} [put]
func (pc *ProjectController) UpdateProject(c *gin.Context) {
	var req dto.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c, err)
		return
	}

	project, err := pc.projectService.UpdateProject(c.Request.Context(), actorFromContext(c), c.Param("id"), req)
	if err != nil {
		respondError(c, pc.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Project updated successfully",
		"data":    dto.NewProjectResponse(project),
	})
}

// DeleteProject godoc
// @Summary Soft-delete a project and its active tasks
// @Tags projects
// @Param id path string true "Project ID"
// @Success 200 {object} dto.ProjectResponse
// @Router /projects/{id} [delete]
func (pc *ProjectController) DeleteProject(c *gin.Context) {
	project, err := pc.projectService.DeleteProject(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		respondError(c, pc.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Project deleted successfully",
		"data":    dto.NewProjectResponse(project),
	})
}

// RestoreProject godoc
// @Summary Restore a trashed project with the tasks deleted alongside it
// @Tags projects
// @Param id path string true "Project ID"
// @Success 200 {object} dto.ProjectResponse
// @Router /projects/{id}/restore [post]
func (pc *ProjectController) RestoreProject(c *gin.Context) {
	project, err := pc.projectService.RestoreProject(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		respondError(c, pc.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Project restored successfully",
		"data":    dto.NewProjectResponse(project),
	})
}

// ForceDeleteProject godoc
// @Summary Permanently delete a trashed project
// @Tags projects
// @Param id path string true "Project ID"
// @Success 200
// @Router /projects/{id}/force [delete]
func (pc *ProjectController) ForceDeleteProject(c *gin.Context) {
	if err := pc.projectService.ForceDeleteProject(c.Request.Context(), actorFromContext(c), c.Param("id")); err != nil {
		respondError(c, pc.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Project permanently deleted",
	})
}
