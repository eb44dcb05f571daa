package repositories

import (
	"github.com/taskdesk/models"
	"gorm.io/gorm"
)

// TaskImageRepository handles database operations for task images
type TaskImageRepository struct {
	db *gorm.DB
}

// NewTaskImageRepository creates a new task image repository
func NewTaskImageRepository(db *gorm.DB) *TaskImageRepository {
	return &TaskImageRepository{db: db}
}

// FindByTaskID lists the images of a task, oldest first
func (r *TaskImageRepository) FindByTaskID(taskID string) ([]models.TaskImage, error) {
	var images []models.TaskImage
	result := r.db.Where("task_id = ?", taskID).Order("created_at ASC, id ASC").Find(&images)
	return images, result.Error
}

// FindByID retrieves a single image of a task
func (r *TaskImageRepository) FindByID(taskID, id string) (models.TaskImage, error) {
	var image models.TaskImage
	result := r.db.First(&image, "id = ? AND task_id = ?", id, taskID)
	return image, result.Error
}

// FindByTaskIDs lists the images attached to any of the given tasks
func (r *TaskImageRepository) FindByTaskIDs(taskIDs []string) ([]models.TaskImage, error) {
	var images []models.TaskImage
	if len(taskIDs) == 0 {
		return images, nil
	}
	result := r.db.Where("task_id IN ?", taskIDs).Find(&images)
	return images, result.Error
}

// Create inserts a new image record
func (r *TaskImageRepository) Create(image *models.TaskImage) error {
	return r.db.Create(image).Error
}

// Delete removes image records by ID
func (r *TaskImageRepository) Delete(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Where("id IN ?", ids).Delete(&models.TaskImage{}).Error
}

// DeleteByTaskIDs removes the image records of the given tasks
func (r *TaskImageRepository) DeleteByTaskIDs(taskIDs []string) error {
	if len(taskIDs) == 0 {
		return nil
	}
	return r.db.Where("task_id IN ?", taskIDs).Delete(&models.TaskImage{}).Error
}
