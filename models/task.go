package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxTaskImages is how many images a task keeps before the oldest is evicted
const MaxTaskImages = 3

// Task is a unit of work inside a project
type Task struct {
	ID          string         `json:"id" gorm:"primaryKey;type:uuid"`
	Title       string         `json:"title" gorm:"not null"`
	Description string         `json:"description"`
	Status      Status         `json:"status" gorm:"type:varchar(16);not null;default:'open';index"`
	AuthorID    string         `json:"authorId" gorm:"type:uuid;not null;index"`
	AssigneeID  *string        `json:"assigneeId" gorm:"type:uuid;index"`
	ProjectID   string         `json:"projectId" gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"deletedAt" gorm:"index"`

	// Relations. Project must be loaded Unscoped: a task keeps its parent while the parent is trashed.
	Project  *Project    `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
	Author   *User       `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Assignee *User       `json:"assignee,omitempty" gorm:"foreignKey:AssigneeID;constraint:OnDelete:SET NULL"`
	Images   []TaskImage `json:"images,omitempty" gorm:"foreignKey:TaskID"`
}

// BeforeCreate assigns a UUID when none was set
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// Trashed reports whether the task is soft-deleted
func (t Task) Trashed() bool {
	return t.DeletedAt.Valid
}
