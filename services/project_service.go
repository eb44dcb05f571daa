package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/taskdesk/dto"
	"github.com/taskdesk/models"
	"github.com/taskdesk/repositories"
	"github.com/taskdesk/storage"
	"github.com/taskdesk/utils"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProjectService handles the project lifecycle: pinning, cascading
// soft deletes and selective restores of child tasks.
type ProjectService struct {
	db       *gorm.DB
	notifier Notifier
	media    storage.Store
	log      *zap.Logger
	now      Clock
}

// NewProjectService creates a new project service instance
func NewProjectService(db *gorm.DB, notifier Notifier, media storage.Store, log *zap.Logger) *ProjectService {
	return &ProjectService{
		db:       db,
		notifier: notifier,
		media:    media,
		log:      log,
		now:      DefaultClock,
	}
}

// WithClock replaces the time source
func (s *ProjectService) WithClock(clock Clock) *ProjectService {
	s.now = clock
	return s
}

// ListProjects retrieves projects with pagination, filtering and sorting
func (s *ProjectService) ListProjects(ctx context.Context, filter dto.ProjectFilter) (dto.ProjectListResponse, error) {
	filter.Page, filter.PageSize = utils.NormalizePage(filter.Page, filter.PageSize)
	filter.SortOrder = utils.SortOrder(filter.SortOrder)

	// Valid sort columns (whitelist approach for security)
	filter.SortBy = utils.SortColumn(filter.SortBy, map[string]bool{
		"created_at": true,
		"updated_at": true,
		"due_date":   true,
		"title":      true,
		"status":     true,
	}, "created_at")

	projects, totalCount, err := repositories.NewProjectRepository(s.db.WithContext(ctx)).FindWithPagination(filter)
	if err != nil {
		return dto.ProjectListResponse{}, err
	}

	return dto.ProjectListResponse{
		Projects:   projects,
		TotalCount: totalCount,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: utils.TotalPages(totalCount, filter.PageSize),
	}, nil
}

// GetProject retrieves a project, optionally including a trashed one
func (s *ProjectService) GetProject(ctx context.Context, id string, withTrashed bool) (models.Project, error) {
	projects := repositories.NewProjectRepository(s.db.WithContext(ctx))
	if withTrashed {
		return projects.FindByIDWithTrashed(id)
	}
	return projects.FindByID(id)
}

// CreateProject creates an open project. Pinning requires the pin permission
// and no other pinned project; the check runs inside the insert transaction.
func (s *ProjectService) CreateProject(ctx context.Context, actor Actor, req dto.CreateProjectRequest) (models.Project, error) {
	project := models.Project{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		DueDate:     datatypes.Date(req.DueDate.UTC()),
		Status:      models.StatusOpen,
		IsPinned:    req.IsPinned,
		ManagerID:   normalizeID(req.ManagerID),
		CreatedBy:   actor.ID,
	}

	if project.IsPinned && !actor.Can(PermissionPinProject) {
		return project, &UnauthorizedPinError{Project: project}
	}

	var manager *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		projects := repositories.NewProjectRepository(tx)

		if project.IsPinned {
			if err := ensureNoOtherPinned(projects, project, ""); err != nil {
				return err
			}
		}

		if project.ManagerID != nil {
			user, err := repositories.NewUserRepository(tx).FindByID(*project.ManagerID)
			if err != nil {
				return fmt.Errorf("manager %s: %w", *project.ManagerID, err)
			}
			manager = &user
		}

		if err := projects.Create(&project); err != nil {
			return pinConflict(err, project)
		}

		return recordActivity(tx, actor, "project.created", "project", project.ID, map[string]interface{}{
			"title":    project.Title,
			"isPinned": project.IsPinned,
		})
	})
	if err != nil {
		return project, err
	}

	if manager != nil && manager.ID != actor.ID {
		s.notifier.Notify(*manager, Event{Type: EventProjectAssigned, Project: &project})
	}

	return project, nil
}

// UpdateProject applies a partial update. A restored project stays editable.
func (s *ProjectService) UpdateProject(ctx context.Context, actor Actor, id string, req dto.UpdateProjectRequest) (models.Project, error) {
	var project models.Project
	var manager *models.User

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		projects := repositories.NewProjectRepository(tx)

		var err error
		project, err = projects.LockByID(id)
		if err != nil {
			return err
		}

		fields := map[string]interface{}{}
		changes := map[string]interface{}{}

		if req.Title != nil {
			fields["title"] = strings.TrimSpace(*req.Title)
		}
		if req.Description != nil {
			fields["description"] = *req.Description
		}
		if req.DueDate != nil {
			fields["due_date"] = datatypes.Date(req.DueDate.UTC())
		}
		if req.Status != nil && *req.Status != project.Status {
			if err := validateStatus(*req.Status); err != nil {
				return err
			}
			fields["status"] = *req.Status
			changes["status"] = *req.Status
		}

		if req.IsPinned != nil && *req.IsPinned != project.IsPinned {
			if *req.IsPinned {
				if !actor.Can(PermissionPinProject) {
					return &UnauthorizedPinError{Project: project}
				}
				if err := ensureNoOtherPinned(projects, project, project.ID); err != nil {
					return err
				}
			}
			fields["is_pinned"] = *req.IsPinned
			changes["isPinned"] = *req.IsPinned
		}

		if req.ManagerID != nil {
			managerID := normalizeID(req.ManagerID)
			if !utils.SameStringPtr(managerID, project.ManagerID) {
				if managerID != nil {
					user, err := repositories.NewUserRepository(tx).FindByID(*managerID)
					if err != nil {
						return fmt.Errorf("manager %s: %w", *managerID, err)
					}
					manager = &user
				}
				fields["manager_id"] = managerID
				changes["managerId"] = utils.StringValue(managerID)
			}
		}

		if len(fields) == 0 {
			return nil
		}

		if err := projects.UpdateFields(project.ID, fields); err != nil {
			return pinConflict(err, project)
		}

		project, err = projects.FindByID(project.ID)
		if err != nil {
			return err
		}

		return recordActivity(tx, actor, "project.updated", "project", project.ID, changes)
	})
	if err != nil {
		return project, err
	}

	if manager != nil && manager.ID != actor.ID {
		s.notifier.Notify(*manager, Event{Type: EventProjectAssigned, Project: &project})
	}

	return project, nil
}

// DeleteProject soft-deletes a project and every active task of it with one
// shared timestamp. Tasks trashed earlier keep their own deleted_at, which is
// what RestoreProject later compares against.
func (s *ProjectService) DeleteProject(ctx context.Context, actor Actor, id string) (models.Project, error) {
	var project models.Project

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		projects := repositories.NewProjectRepository(tx)

		var err error
		project, err = projects.LockByID(id)
		if err != nil {
			return err
		}

		if project.IsPinned {
			return &PinnedProjectDeletionError{Project: project}
		}

		now := s.now()
		cascaded, err := repositories.NewTaskRepository(tx).SoftDeleteByProject(project.ID, now)
		if err != nil {
			return fmt.Errorf("error deleting project tasks: %w", err)
		}

		if err := projects.SoftDelete(project.ID, now); err != nil {
			return err
		}

		project, err = projects.FindByIDWithTrashed(project.ID)
		if err != nil {
			return err
		}

		return recordActivity(tx, actor, "project.deleted", "project", project.ID, map[string]interface{}{
			"cascadedTasks": cascaded,
		})
	})
	if err != nil {
		return project, err
	}

	s.log.Info("project deleted",
		zap.String("projectId", project.ID),
		zap.String("actorId", actor.ID),
	)
	return project, nil
}

// RestoreProject brings a trashed project back as "restored" together with
// the tasks that went down with it (deleted_at >= the project's deleted_at).
// Tasks deleted on their own before the project stay trashed.
func (s *ProjectService) RestoreProject(ctx context.Context, actor Actor, id string) (models.Project, error) {
	var project models.Project

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		projects := repositories.NewProjectRepository(tx)
		tasks := repositories.NewTaskRepository(tx)

		var err error
		project, err = projects.LockByIDWithTrashed(id)
		if err != nil {
			return err
		}

		if !project.Trashed() {
			return &NotDeletedError{Subject: "project", ID: project.ID}
		}
		cutoff := project.DeletedAt.Time

		if err := projects.Restore(project.ID); err != nil {
			return err
		}

		trashed, err := tasks.FindTrashedByProject(project.ID)
		if err != nil {
			return err
		}

		ids := make([]string, 0, len(trashed))
		for _, task := range trashed {
			if !task.DeletedAt.Time.Before(cutoff) {
				ids = append(ids, task.ID)
			}
		}

		restored, err := tasks.RestoreByIDs(ids)
		if err != nil {
			return fmt.Errorf("error restoring project tasks: %w", err)
		}

		project, err = projects.FindByID(project.ID)
		if err != nil {
			return err
		}

		return recordActivity(tx, actor, "project.restored", "project", project.ID, map[string]interface{}{
			"restoredTasks": restored,
			"keptDeleted":   len(trashed) - len(ids),
		})
	})
	return project, err
}

// ForceDeleteProject permanently removes a trashed project with its tasks and images.
// Stored image objects are removed after the rows are gone.
func (s *ProjectService) ForceDeleteProject(ctx context.Context, actor Actor, id string) error {
	var images []models.TaskImage

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		projects := repositories.NewProjectRepository(tx)
		tasks := repositories.NewTaskRepository(tx)
		imageRepo := repositories.NewTaskImageRepository(tx)

		project, err := projects.LockByIDWithTrashed(id)
		if err != nil {
			return err
		}
		if !project.Trashed() {
			return &NotDeletedError{Subject: "project", ID: project.ID}
		}

		taskIDs, err := tasks.IDsByProject(project.ID)
		if err != nil {
			return err
		}

		images, err = imageRepo.FindByTaskIDs(taskIDs)
		if err != nil {
			return err
		}

		if err := imageRepo.DeleteByTaskIDs(taskIDs); err != nil {
			return err
		}
		if err := tasks.ForceDeleteByProject(project.ID); err != nil {
			return err
		}
		if err := projects.ForceDelete(project.ID); err != nil {
			return err
		}

		return recordActivity(tx, actor, "project.force_deleted", "project", project.ID, map[string]interface{}{
			"title": project.Title,
			"tasks": len(taskIDs),
		})
	})
	if err != nil {
		return err
	}

	removeMedia(ctx, s.media, s.log, images)
	return nil
}

func ensureNoOtherPinned(projects *repositories.ProjectRepository, project models.Project, excludeID string) error {
	pinned, err := projects.FindPinned(excludeID)
	if err != nil {
		return err
	}
	if pinned != nil {
		return &InvalidPinnedProjectError{Project: project, Pinned: pinned}
	}
	return nil
}

// pinConflict maps a unique violation on the single-pin index to InvalidPinnedProjectError
func pinConflict(err error, project models.Project) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &InvalidPinnedProjectError{Project: project}
	}
	return err
}

func normalizeID(id *string) *string {
	if id == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*id)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func recordActivity(tx *gorm.DB, actor Actor, action, subjectType, subjectID string, properties map[string]interface{}) error {
	if err := repositories.NewActivityRepository(tx).Record(actor.ID, action, subjectType, subjectID, properties); err != nil {
		return fmt.Errorf("error recording activity: %w", err)
	}
	return nil
}

func removeMedia(ctx context.Context, media storage.Store, log *zap.Logger, images []models.TaskImage) {
	if media == nil {
		return
	}
	for _, image := range images {
		if err := media.Delete(ctx, image.StorageKey); err != nil {
			log.Warn("failed to remove stored image",
				zap.String("imageId", image.ID),
				zap.String("key", image.StorageKey),
				zap.Error(err),
			)
		}
	}
}
