package repositories

import (
	"time"

	"github.com/taskdesk/dto"
	"github.com/taskdesk/models"
	"github.com/taskdesk/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaskRepository handles database operations for tasks
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new task repository bound to db (or a transaction)
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func withParent(db *gorm.DB) *gorm.DB {
	return db.Preload("Project", func(db *gorm.DB) *gorm.DB {
		return db.Unscoped()
	})
}

// FindByID retrieves an active task with its (possibly trashed) project
func (r *TaskRepository) FindByID(id string) (models.Task, error) {
	var task models.Task
	result := withParent(r.db).First(&task, "id = ?", id)
	return task, result.Error
}

// FindByIDWithTrashed retrieves a task including soft-deleted ones
func (r *TaskRepository) FindByIDWithTrashed(id string) (models.Task, error) {
	var task models.Task
	result := withParent(r.db.Unscoped()).First(&task, "id = ?", id)
	return task, result.Error
}

// LockByID is FindByID holding a row lock on the task until the transaction ends
func (r *TaskRepository) LockByID(id string) (models.Task, error) {
	var task models.Task
	result := withParent(r.db).Clauses(clause.Locking{Strength: "UPDATE"}).First(&task, "id = ?", id)
	return task, result.Error
}

// Create inserts a new task
func (r *TaskRepository) Create(task *models.Task) error {
	return r.db.Omit(clause.Associations).Create(task).Error
}

// UpdateFields applies column changes to an active task and bumps updated_at
func (r *TaskRepository) UpdateFields(id string, fields map[string]interface{}) error {
	return r.db.Model(&models.Task{}).Where("id = ?", id).Updates(fields).Error
}

// SoftDelete trashes a single task, applying extra column changes in the same statement
func (r *TaskRepository) SoftDelete(id string, at time.Time, extra map[string]interface{}) error {
	fields := map[string]interface{}{"deleted_at": at}
	for k, v := range extra {
		fields[k] = v
	}
	return r.db.Model(&models.Task{}).Where("id = ?", id).UpdateColumns(fields).Error
}

// SoftDeleteByProject trashes every active task of a project with one shared timestamp.
// Already trashed tasks are excluded by the soft-delete scope and keep their deleted_at.
func (r *TaskRepository) SoftDeleteByProject(projectID string, at time.Time) (int64, error) {
	result := r.db.Model(&models.Task{}).Where("project_id = ?", projectID).UpdateColumn("deleted_at", at)
	return result.RowsAffected, result.Error
}

// FindTrashedByProject lists the soft-deleted tasks of a project
func (r *TaskRepository) FindTrashedByProject(projectID string) ([]models.Task, error) {
	var tasks []models.Task
	result := r.db.Unscoped().Where("project_id = ? AND deleted_at IS NOT NULL", projectID).Find(&tasks)
	return tasks, result.Error
}

// RestoreByIDs clears deleted_at and sets the restored status on the given tasks
func (r *TaskRepository) RestoreByIDs(ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.Unscoped().Model(&models.Task{}).Where("id IN ?", ids).Updates(map[string]interface{}{
		"deleted_at": nil,
		"status":     models.StatusRestored,
	})
	return result.RowsAffected, result.Error
}

// IDsByProject returns the IDs of all tasks of a project, trashed included
func (r *TaskRepository) IDsByProject(projectID string) ([]string, error) {
	var ids []string
	result := r.db.Unscoped().Model(&models.Task{}).Where("project_id = ?", projectID).Pluck("id", &ids)
	return ids, result.Error
}

// ForceDeleteByProject permanently removes every task of a project
func (r *TaskRepository) ForceDeleteByProject(projectID string) error {
	return r.db.Unscoped().Where("project_id = ?", projectID).Delete(&models.Task{}).Error
}

// FindWithPagination retrieves tasks with pagination, filtering and sorting
func (r *TaskRepository) FindWithPagination(filter dto.TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task
	var totalCount int64

	db := r.db.Model(&models.Task{})

	switch filter.Trashed {
	case dto.TrashedWith:
		db = db.Unscoped()
	case dto.TrashedOnly:
		db = db.Unscoped().Where("deleted_at IS NOT NULL")
	}

	if filter.ProjectID != "" {
		db = db.Where("project_id = ?", filter.ProjectID)
	}
	if filter.AssigneeID != "" {
		db = db.Where("assignee_id = ?", filter.AssigneeID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		db = db.Where("(LOWER(title) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?))", searchPattern, searchPattern)
	}

	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	orderString := filter.SortBy + " " + filter.SortOrder
	if err := db.Order(orderString).Scopes(utils.Paginate(filter.Page, filter.PageSize)).Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, totalCount, nil
}
