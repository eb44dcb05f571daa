package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskImage is an image attached to a task. The bytes live in the media store under StorageKey.
type TaskImage struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid"`
	TaskID      string    `json:"taskId" gorm:"type:uuid;not null;index"`
	StorageKey  string    `json:"-" gorm:"not null"`
	FileName    string    `json:"fileName" gorm:"not null"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"createdAt" gorm:"index"`
}

// BeforeCreate assigns a UUID when none was set
func (i *TaskImage) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
