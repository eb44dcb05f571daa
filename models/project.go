package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Project groups tasks under a manager and a due date.
// At most one project may be pinned; the partial unique index enforces it in the store.
type Project struct {
	ID          string         `json:"id" gorm:"primaryKey;type:uuid"`
	Title       string         `json:"title" gorm:"not null"`
	Description string         `json:"description"`
	DueDate     datatypes.Date `json:"dueDate" gorm:"not null;index"`
	Status      Status         `json:"status" gorm:"type:varchar(16);not null;default:'open';index"`
	IsPinned    bool           `json:"isPinned" gorm:"not null;default:false;uniqueIndex:idx_projects_single_pinned,where:is_pinned = true"`
	ManagerID   *string        `json:"managerId" gorm:"type:uuid;index"`
	CreatedBy   string         `json:"createdBy" gorm:"type:uuid;not null"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"deletedAt" gorm:"index"`

	// Relations
	Manager *User  `json:"manager,omitempty" gorm:"foreignKey:ManagerID;constraint:OnDelete:SET NULL"`
	Tasks   []Task `json:"tasks,omitempty" gorm:"foreignKey:ProjectID"`
}

// BeforeCreate assigns a UUID when none was set
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Trashed reports whether the project is soft-deleted
func (p Project) Trashed() bool {
	return p.DeletedAt.Valid
}
