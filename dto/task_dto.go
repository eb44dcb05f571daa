package dto

import (
	"time"

	"github.com/taskdesk/models"
)

// TaskFilter represents filter criteria for tasks
type TaskFilter struct {
	ProjectID  string
	AssigneeID string
	Status     models.Status
	Search     string
	Trashed    string
	SortBy     string
	SortOrder  string
	Page       int
	PageSize   int
}

// TaskListResponse represents paginated task list response
type TaskListResponse struct {
	Tasks      []models.Task `json:"tasks"`
	TotalCount int64         `json:"totalCount"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	TotalPages int           `json:"totalPages"`
}

// CreateTaskRequest represents the request payload for creating a task
type CreateTaskRequest struct {
	Title       string         `json:"title" binding:"required,max=255"`
	Description string         `json:"description"`
	Status      *models.Status `json:"status"`
	AssigneeID  *string        `json:"assigneeId"`
}

// UpdateTaskRequest carries a partial task update
type UpdateTaskRequest struct {
	Title       *string        `json:"title" binding:"omitempty,max=255"`
	Description *string        `json:"description"`
	Status      *models.Status `json:"status"`
	AssigneeID  *string        `json:"assigneeId"`
}

// ChangeTaskStatusRequest moves a task to another status
type ChangeTaskStatusRequest struct {
	Status models.Status `json:"status" binding:"required"`
}

// TaskResponse represents the standard response format for a task
type TaskResponse struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Status      models.Status `json:"status"`
	AuthorID    string        `json:"authorId"`
	AssigneeID  *string       `json:"assigneeId"`
	ProjectID   string        `json:"projectId"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
	DeletedAt   *time.Time    `json:"deletedAt,omitempty"`
}

// NewTaskResponse maps a task model to its response
func NewTaskResponse(t models.Task) TaskResponse {
	resp := TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		AuthorID:    t.AuthorID,
		AssigneeID:  t.AssigneeID,
		ProjectID:   t.ProjectID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.DeletedAt.Valid {
		deletedAt := t.DeletedAt.Time
		resp.DeletedAt = &deletedAt
	}
	return resp
}

// ActivityFilter represents filter criteria for the activity log
type ActivityFilter struct {
	SubjectType string
	SubjectID   string
	ActorID     string
	Page        int
	PageSize    int
}

// ActivityListResponse represents paginated activity entries
type ActivityListResponse struct {
	Activities []models.ActivityLog `json:"activities"`
	TotalCount int64                `json:"totalCount"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"pageSize"`
	TotalPages int                  `json:"totalPages"`
}
