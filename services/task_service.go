package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/taskdesk/dto"
	"github.com/taskdesk/models"
	"github.com/taskdesk/repositories"
	"github.com/taskdesk/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TaskService handles task lifecycle rules against the parent project state
type TaskService struct {
	db       *gorm.DB
	notifier Notifier
	log      *zap.Logger
	now      Clock
}

// NewTaskService creates a new task service instance
func NewTaskService(db *gorm.DB, notifier Notifier, log *zap.Logger) *TaskService {
	return &TaskService{
		db:       db,
		notifier: notifier,
		log:      log,
		now:      DefaultClock,
	}
}

// WithClock replaces the time source
func (s *TaskService) WithClock(clock Clock) *TaskService {
	s.now = clock
	return s
}

// ListTasks retrieves tasks with pagination, filtering and sorting
func (s *TaskService) ListTasks(ctx context.Context, filter dto.TaskFilter) (dto.TaskListResponse, error) {
	filter.Page, filter.PageSize = utils.NormalizePage(filter.Page, filter.PageSize)
	filter.SortOrder = utils.SortOrder(filter.SortOrder)
	filter.SortBy = utils.SortColumn(filter.SortBy, map[string]bool{
		"created_at": true,
		"updated_at": true,
		"title":      true,
		"status":     true,
	}, "created_at")

	tasks, totalCount, err := repositories.NewTaskRepository(s.db.WithContext(ctx)).FindWithPagination(filter)
	if err != nil {
		return dto.TaskListResponse{}, err
	}

	return dto.TaskListResponse{
		Tasks:      tasks,
		TotalCount: totalCount,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: utils.TotalPages(totalCount, filter.PageSize),
	}, nil
}

// GetTask retrieves a task with its parent project
func (s *TaskService) GetTask(ctx context.Context, id string, withTrashed bool) (models.Task, error) {
	tasks := repositories.NewTaskRepository(s.db.WithContext(ctx))
	if withTrashed {
		return tasks.FindByIDWithTrashed(id)
	}
	return tasks.FindByID(id)
}

// EnsureEditable rejects field edits on a task that is still "restored".
// Callers check it before UpdateTask; ChangeTaskStatus is the way out.
func (s *TaskService) EnsureEditable(task models.Task) error {
	if task.Status == models.StatusRestored {
		return &TaskRestoredError{Task: task}
	}
	return nil
}

// CreateTask adds a task to an open or pending project and touches the project
func (s *TaskService) CreateTask(ctx context.Context, actor Actor, projectID string, req dto.CreateTaskRequest) (models.Task, error) {
	status := models.StatusOpen
	if req.Status != nil && *req.Status != "" {
		if err := validateStatus(*req.Status); err != nil {
			return models.Task{}, err
		}
		status = *req.Status
	}

	task := models.Task{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Status:      status,
		AuthorID:    actor.ID,
		AssigneeID:  normalizeID(req.AssigneeID),
		ProjectID:   projectID,
	}

	var assignee *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		projects := repositories.NewProjectRepository(tx)

		project, err := projects.LockByID(projectID)
		if err != nil {
			return err
		}
		if !project.Status.AcceptsTasks() {
			return &CreateTaskError{Project: project}
		}

		if task.AssigneeID != nil {
			user, err := repositories.NewUserRepository(tx).FindByID(*task.AssigneeID)
			if err != nil {
				return fmt.Errorf("assignee %s: %w", *task.AssigneeID, err)
			}
			assignee = &user
		}

		if err := repositories.NewTaskRepository(tx).Create(&task); err != nil {
			return err
		}
		if err := projects.Touch(project.ID, s.now()); err != nil {
			return err
		}
		task.Project = &project

		return recordActivity(tx, actor, "task.created", "task", task.ID, map[string]interface{}{
			"projectId": project.ID,
			"title":     task.Title,
		})
	})
	if err != nil {
		return task, err
	}

	if assignee != nil && assignee.ID != actor.ID {
		s.notifier.Notify(*assignee, Event{Type: EventTaskAssigned, Task: &task, Project: task.Project})
	}
	return task, nil
}

// UpdateTask edits a task of an open or pending project. The parent is
// touched only while it is not trashed.
func (s *TaskService) UpdateTask(ctx context.Context, actor Actor, id string, req dto.UpdateTaskRequest) (models.Task, error) {
	var task models.Task
	var assignee *models.User

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tasks := repositories.NewTaskRepository(tx)

		var err error
		task, err = tasks.FindByID(id)
		if err != nil {
			return err
		}
		if task.Project == nil || !task.Project.Status.AcceptsTasks() {
			return &UpdateTaskError{Task: task}
		}

		fields := map[string]interface{}{}
		if req.Title != nil {
			fields["title"] = strings.TrimSpace(*req.Title)
		}
		if req.Description != nil {
			fields["description"] = *req.Description
		}
		if req.Status != nil && *req.Status != task.Status {
			if err := validateStatus(*req.Status); err != nil {
				return err
			}
			fields["status"] = *req.Status
		}
		if req.AssigneeID != nil {
			assigneeID := normalizeID(req.AssigneeID)
			if !utils.SameStringPtr(assigneeID, task.AssigneeID) {
				if assigneeID != nil {
					user, err := repositories.NewUserRepository(tx).FindByID(*assigneeID)
					if err != nil {
						return fmt.Errorf("assignee %s: %w", *assigneeID, err)
					}
					assignee = &user
				}
				fields["assignee_id"] = assigneeID
			}
		}

		if len(fields) == 0 {
			return nil
		}

		if err := tasks.UpdateFields(task.ID, fields); err != nil {
			return err
		}
		if err := s.touchParent(tx, task); err != nil {
			return err
		}

		task, err = tasks.FindByID(task.ID)
		if err != nil {
			return err
		}

		return recordActivity(tx, actor, "task.updated", "task", task.ID, map[string]interface{}{
			"fields": fieldNames(fields),
		})
	})
	if err != nil {
		return task, err
	}

	if assignee != nil && assignee.ID != actor.ID {
		s.notifier.Notify(*assignee, Event{Type: EventTaskAssigned, Task: &task, Project: task.Project})
	}
	return task, nil
}

// ChangeTaskStatus moves a task to another status. It is the explicit
// transition that takes a task out of "restored".
func (s *TaskService) ChangeTaskStatus(ctx context.Context, actor Actor, id string, status models.Status) (models.Task, error) {
	if err := validateStatus(status); err != nil {
		return models.Task{}, err
	}

	var task models.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tasks := repositories.NewTaskRepository(tx)

		var err error
		task, err = tasks.FindByID(id)
		if err != nil {
			return err
		}
		if task.Project == nil || !task.Project.Status.AcceptsTasks() {
			return &UpdateTaskError{Task: task}
		}
		if task.Status == status {
			return nil
		}

		previous := task.Status
		if err := tasks.UpdateFields(task.ID, map[string]interface{}{"status": status}); err != nil {
			return err
		}
		if err := s.touchParent(tx, task); err != nil {
			return err
		}

		task, err = tasks.FindByID(task.ID)
		if err != nil {
			return err
		}

		return recordActivity(tx, actor, "task.status_changed", "task", task.ID, map[string]interface{}{
			"from": previous,
			"to":   status,
		})
	})
	return task, err
}

// DeleteTask soft-deletes a task. A direct deletion (cascade == false) also
// closes the task and drops its assignee; a cascading one only trashes it.
func (s *TaskService) DeleteTask(ctx context.Context, actor Actor, id string, cascade bool) (models.Task, error) {
	var task models.Task

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tasks := repositories.NewTaskRepository(tx)

		var err error
		task, err = tasks.FindByID(id)
		if err != nil {
			return err
		}

		var extra map[string]interface{}
		if !cascade {
			extra = map[string]interface{}{
				"status":      models.StatusClosed,
				"assignee_id": nil,
			}
		}

		if err := tasks.SoftDelete(task.ID, s.now(), extra); err != nil {
			return err
		}

		task, err = tasks.FindByIDWithTrashed(task.ID)
		if err != nil {
			return err
		}

		return recordActivity(tx, actor, "task.deleted", "task", task.ID, map[string]interface{}{
			"cascade": cascade,
		})
	})
	return task, err
}

// RestoreTask brings back a trashed task as long as its project is neither
// trashed nor closed, completed or expired.
func (s *TaskService) RestoreTask(ctx context.Context, actor Actor, id string) (models.Task, error) {
	var task models.Task

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tasks := repositories.NewTaskRepository(tx)

		var err error
		task, err = tasks.FindByIDWithTrashed(id)
		if err != nil {
			return err
		}
		if !task.Trashed() {
			return &NotDeletedError{Subject: "task", ID: task.ID}
		}

		project, err := repositories.NewProjectRepository(tx).LockByIDWithTrashed(task.ProjectID)
		if err != nil {
			return err
		}
		if project.Trashed() {
			return &ProjectDeletedError{Task: task, Project: project}
		}
		if project.Status.Inactive() {
			return &InvalidProjectStatusError{Task: task, Project: project}
		}

		if _, err := tasks.RestoreByIDs([]string{task.ID}); err != nil {
			return err
		}

		task, err = tasks.FindByID(task.ID)
		if err != nil {
			return err
		}

		return recordActivity(tx, actor, "task.restored", "task", task.ID, nil)
	})
	return task, err
}

func (s *TaskService) touchParent(tx *gorm.DB, task models.Task) error {
	if task.Project != nil && task.Project.Trashed() {
		return nil
	}
	return repositories.NewProjectRepository(tx).Touch(task.ProjectID, s.now())
}

func fieldNames(fields map[string]interface{}) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	return names
}
