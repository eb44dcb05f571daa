package repositories

import (
	"errors"
	"time"

	"github.com/taskdesk/dto"
	"github.com/taskdesk/models"
	"github.com/taskdesk/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProjectRepository handles database operations for projects
type ProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new project repository bound to db (or a transaction)
func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// FindByID retrieves an active project by its ID
func (r *ProjectRepository) FindByID(id string) (models.Project, error) {
	var project models.Project
	result := r.db.First(&project, "id = ?", id)
	return project, result.Error
}

// FindByIDWithTrashed retrieves a project by ID including soft-deleted ones
func (r *ProjectRepository) FindByIDWithTrashed(id string) (models.Project, error) {
	var project models.Project
	result := r.db.Unscoped().First(&project, "id = ?", id)
	return project, result.Error
}

// LockByID loads an active project and locks its row until the transaction ends
func (r *ProjectRepository) LockByID(id string) (models.Project, error) {
	var project models.Project
	result := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&project, "id = ?", id)
	return project, result.Error
}

// LockByIDWithTrashed is LockByID including soft-deleted projects
func (r *ProjectRepository) LockByIDWithTrashed(id string) (models.Project, error) {
	var project models.Project
	result := r.db.Unscoped().
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&project, "id = ?", id)
	return project, result.Error
}

// FindPinned returns the pinned project other than excludeID, locking it, or nil if there is none
func (r *ProjectRepository) FindPinned(excludeID string) (*models.Project, error) {
	var project models.Project
	query := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("is_pinned = ?", true)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// Create inserts a new project into the database
func (r *ProjectRepository) Create(project *models.Project) error {
	return r.db.Omit(clause.Associations).Create(project).Error
}

// UpdateFields applies column changes to an active project and bumps updated_at
func (r *ProjectRepository) UpdateFields(id string, fields map[string]interface{}) error {
	return r.db.Model(&models.Project{}).Where("id = ?", id).Updates(fields).Error
}

// Touch bumps updated_at of an active project. Trashed projects are left alone.
func (r *ProjectRepository) Touch(id string, at time.Time) error {
	return r.db.Model(&models.Project{}).Where("id = ?", id).UpdateColumn("updated_at", at).Error
}

// SoftDelete trashes a project, closes it and drops its manager without touching updated_at
func (r *ProjectRepository) SoftDelete(id string, at time.Time) error {
	return r.db.Model(&models.Project{}).Where("id = ?", id).UpdateColumns(map[string]interface{}{
		"deleted_at": at,
		"status":     models.StatusClosed,
		"manager_id": nil,
	}).Error
}

// Restore clears deleted_at and sets the restored status
func (r *ProjectRepository) Restore(id string) error {
	return r.db.Unscoped().Model(&models.Project{}).Where("id = ?", id).Updates(map[string]interface{}{
		"deleted_at": nil,
		"status":     models.StatusRestored,
	}).Error
}

// ForceDelete permanently removes the project row
func (r *ProjectRepository) ForceDelete(id string) error {
	return r.db.Unscoped().Delete(&models.Project{}, "id = ?", id).Error
}

// FindOverdue returns open or pending projects whose due date is before day
func (r *ProjectRepository) FindOverdue(day time.Time) ([]models.Project, error) {
	var projects []models.Project
	result := r.db.Where("status IN ? AND due_date < ?", []models.Status{models.StatusOpen, models.StatusPending}, day).
		Find(&projects)
	return projects, result.Error
}

// FindDueBetween returns open or pending projects due in [from, to]
func (r *ProjectRepository) FindDueBetween(from, to time.Time) ([]models.Project, error) {
	var projects []models.Project
	result := r.db.Where("status IN ? AND due_date >= ? AND due_date <= ?",
		[]models.Status{models.StatusOpen, models.StatusPending}, from, to).
		Find(&projects)
	return projects, result.Error
}

// MarkExpired flips the given projects to expired
func (r *ProjectRepository) MarkExpired(ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.Project{}).Where("id IN ?", ids).Update("status", models.StatusExpired)
	return result.RowsAffected, result.Error
}

// FindWithPagination retrieves projects with pagination, filtering and sorting
func (r *ProjectRepository) FindWithPagination(filter dto.ProjectFilter) ([]models.Project, int64, error) {
	var projects []models.Project
	var totalCount int64

	db := r.db.Model(&models.Project{})

	switch filter.Trashed {
	case dto.TrashedWith:
		db = db.Unscoped()
	case dto.TrashedOnly:
		db = db.Unscoped().Where("deleted_at IS NOT NULL")
	}

	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}

	if filter.ManagerID != "" {
		db = db.Where("manager_id = ?", filter.ManagerID)
	}

	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		db = db.Where("(LOWER(title) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?))", searchPattern, searchPattern)
	}

	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	// pinned project always leads the first page
	orderString := "is_pinned DESC, " + filter.SortBy + " " + filter.SortOrder
	if err := db.Order(orderString).Scopes(utils.Paginate(filter.Page, filter.PageSize)).Find(&projects).Error; err != nil {
		return nil, 0, err
	}

	return projects, totalCount, nil
}
