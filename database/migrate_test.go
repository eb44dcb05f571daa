package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdesk/database/dbtest"
	"github.com/taskdesk/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func TestMigrateCreatesTables(t *testing.T) {
	db := dbtest.New(t)

	for _, table := range []string{"users", "projects", "tasks", "task_images", "activity_logs"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasIndex(&models.Project{}, "idx_projects_single_pinned"))
}

func TestSinglePinnedIndexRejectsSecondPin(t *testing.T) {
	db := dbtest.New(t)

	owner := models.User{Email: "owner@example.com", Name: "Owner", Password: "x", Role: models.RoleAdmin}
	require.NoError(t, db.Create(&owner).Error)

	first := models.Project{Title: "first", IsPinned: true, CreatedBy: owner.ID, DueDate: datatypes.Date{}}
	require.NoError(t, db.Create(&first).Error)

	second := models.Project{Title: "second", IsPinned: true, CreatedBy: owner.ID}
	err := db.Create(&second).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	unpinned := models.Project{Title: "third", CreatedBy: owner.ID}
	assert.NoError(t, db.Create(&unpinned).Error)
}
