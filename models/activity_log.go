package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ActivityLog records who did what to which entity
type ActivityLog struct {
	ID          string         `json:"id" gorm:"primaryKey;type:uuid"`
	ActorID     *string        `json:"actorId" gorm:"type:uuid;index"`
	Action      string         `json:"action" gorm:"type:varchar(64);not null;index"`
	SubjectType string         `json:"subjectType" gorm:"type:varchar(32);not null"`
	SubjectID   string         `json:"subjectId" gorm:"type:uuid;not null;index"`
	Properties  datatypes.JSON `json:"properties"`
	CreatedAt   time.Time      `json:"createdAt" gorm:"index"`
}

// BeforeCreate assigns a UUID when none was set
func (a *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
