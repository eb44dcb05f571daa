package dto

import (
	"time"

	"github.com/taskdesk/models"
)

// Trashed filter values
const (
	TrashedWithout = ""
	TrashedWith    = "with"
	TrashedOnly    = "only"
)

// ProjectFilter represents filter criteria for projects
type ProjectFilter struct {
	Search    string
	Status    models.Status
	ManagerID string
	Trashed   string
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

// ProjectListResponse represents paginated project list response
type ProjectListResponse struct {
	Projects   []models.Project `json:"projects"`
	TotalCount int64            `json:"totalCount"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalPages int              `json:"totalPages"`
}

// CreateProjectRequest represents the request payload for creating a new project
type CreateProjectRequest struct {
	Title       string    `json:"title" binding:"required,max=255"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"dueDate" binding:"required"`
	IsPinned    bool      `json:"isPinned"`
	ManagerID   *string   `json:"managerId"`
}

// UpdateProjectRequest carries a partial update; nil fields are left untouched
type UpdateProjectRequest struct {
	Title       *string        `json:"title" binding:"omitempty,max=255"`
	Description *string        `json:"description"`
	DueDate     *time.Time     `json:"dueDate"`
	Status      *models.Status `json:"status"`
	IsPinned    *bool          `json:"isPinned"`
	ManagerID   *string        `json:"managerId"`
}

// ProjectResponse represents the standard response format for a project
type ProjectResponse struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	DueDate     string        `json:"dueDate"`
	Status      models.Status `json:"status"`
	IsPinned    bool          `json:"isPinned"`
	ManagerID   *string       `json:"managerId"`
	CreatedBy   string        `json:"createdBy"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
	DeletedAt   *time.Time    `json:"deletedAt,omitempty"`
}

// NewProjectResponse maps a project model to its response
func NewProjectResponse(p models.Project) ProjectResponse {
	resp := ProjectResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		DueDate:     time.Time(p.DueDate).Format("2006-01-02"),
		Status:      p.Status,
		IsPinned:    p.IsPinned,
		ManagerID:   p.ManagerID,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.DeletedAt.Valid {
		deletedAt := p.DeletedAt.Time
		resp.DeletedAt = &deletedAt
	}
	return resp
}
