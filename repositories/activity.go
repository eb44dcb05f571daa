package repositories

import (
	"encoding/json"

	"github.com/taskdesk/dto"
	"github.com/taskdesk/models"
	"github.com/taskdesk/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ActivityRepository stores the activity log
type ActivityRepository struct {
	db *gorm.DB
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Record appends one activity entry
func (r *ActivityRepository) Record(actorID, action, subjectType, subjectID string, properties map[string]interface{}) error {
	raw, err := json.Marshal(properties)
	if err != nil {
		return err
	}
	entry := models.ActivityLog{
		Action:      action,
		SubjectType: subjectType,
		SubjectID:   subjectID,
		Properties:  datatypes.JSON(raw),
	}
	// scheduled jobs act without a user
	if actorID != "" {
		entry.ActorID = &actorID
	}
	return r.db.Create(&entry).Error
}

// FindWithPagination lists activity entries, newest first
func (r *ActivityRepository) FindWithPagination(filter dto.ActivityFilter) ([]models.ActivityLog, int64, error) {
	var entries []models.ActivityLog
	var totalCount int64

	db := r.db.Model(&models.ActivityLog{})
	if filter.SubjectType != "" {
		db = db.Where("subject_type = ?", filter.SubjectType)
	}
	if filter.SubjectID != "" {
		db = db.Where("subject_id = ?", filter.SubjectID)
	}
	if filter.ActorID != "" {
		db = db.Where("actor_id = ?", filter.ActorID)
	}

	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Order("created_at DESC").Scopes(utils.Paginate(filter.Page, filter.PageSize)).Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, totalCount, nil
}
