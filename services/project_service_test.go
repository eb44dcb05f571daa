package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdesk/dto"
	"github.com/taskdesk/models"
	"github.com/taskdesk/utils"
)

func loadProject(t *testing.T, f *fixture, id string) models.Project {
	t.Helper()
	var project models.Project
	require.NoError(t, f.db.Unscoped().First(&project, "id = ?", id).Error)
	return project
}

func loadTask(t *testing.T, f *fixture, id string) models.Task {
	t.Helper()
	var task models.Task
	require.NoError(t, f.db.Unscoped().First(&task, "id = ?", id).Error)
	return task
}

func TestCreateProjectDefaults(t *testing.T) {
	f := newFixture(t)
	actor := NewActor(f.manager)

	project := f.createProject(t, actor, "  Website relaunch ")

	assert.NotEmpty(t, project.ID)
	assert.Equal(t, "Website relaunch", project.Title)
	assert.Equal(t, models.StatusOpen, project.Status)
	assert.Equal(t, f.manager.ID, project.CreatedBy)
	assert.False(t, project.IsPinned)

	var count int64
	require.NoError(t, f.db.Model(&models.ActivityLog{}).Where("subject_id = ? AND action = ?", project.ID, "project.created").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDeleteProjectCascadesToActiveTasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := NewActor(f.admin)

	project := f.createProject(t, admin, "Cascade")
	t1 := f.createTask(t, admin, project.ID, "one")
	t2 := f.createTask(t, admin, project.ID, "two")
	earlier := f.createTask(t, admin, project.ID, "deleted earlier")

	_, err := f.tasks.DeleteTask(ctx, admin, earlier.ID, false)
	require.NoError(t, err)
	earlierDeletedAt := f.clock.Now()

	f.clock.Advance(time.Second)
	deletedAt := f.clock.Now()

	deleted, err := f.projects.DeleteProject(ctx, admin, project.ID)
	require.NoError(t, err)
	assert.True(t, deleted.Trashed())

	stored := loadProject(t, f, project.ID)
	require.True(t, stored.DeletedAt.Valid)
	assert.True(t, stored.DeletedAt.Time.Equal(deletedAt))
	assert.Equal(t, models.StatusClosed, stored.Status)
	assert.Nil(t, stored.ManagerID)

	for _, id := range []string{t1.ID, t2.ID} {
		task := loadTask(t, f, id)
		require.True(t, task.DeletedAt.Valid, id)
		assert.True(t, task.DeletedAt.Time.Equal(deletedAt), id)
	}

	untouched := loadTask(t, f, earlier.ID)
	require.True(t, untouched.DeletedAt.Valid)
	assert.True(t, untouched.DeletedAt.Time.Equal(earlierDeletedAt))
}

func TestRestoreProjectUsesDeletionCutoff(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := NewActor(f.admin)

	project := f.createProject(t, admin, "Cutoff")
	taskA := f.createTask(t, admin, project.ID, "A")
	taskB := f.createTask(t, admin, project.ID, "B")

	_, err := f.tasks.DeleteTask(ctx, admin, taskA.ID, false)
	require.NoError(t, err)

	f.clock.Advance(time.Second)
	_, err = f.projects.DeleteProject(ctx, admin, project.ID)
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	restored, err := f.projects.RestoreProject(ctx, admin, project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRestored, restored.Status)
	assert.False(t, restored.Trashed())

	b := loadTask(t, f, taskB.ID)
	assert.False(t, b.DeletedAt.Valid)
	assert.Equal(t, models.StatusRestored, b.Status)

	a := loadTask(t, f, taskA.ID)
	assert.True(t, a.DeletedAt.Valid)
	assert.Equal(t, models.StatusClosed, a.Status)
}

func TestRestoreProjectRejectsActiveProject(t *testing.T) {
	f := newFixture(t)
	admin := NewActor(f.admin)
	project := f.createProject(t, admin, "Active")
	before := loadProject(t, f, project.ID)

	_, err := f.projects.RestoreProject(context.Background(), admin, project.ID)

	var notDeleted *NotDeletedError
	require.ErrorAs(t, err, &notDeleted)
	assert.Equal(t, "project", notDeleted.Subject)

	after := loadProject(t, f, project.ID)
	assert.Equal(t, before.Status, after.Status)
	assert.True(t, before.UpdatedAt.Equal(after.UpdatedAt))
	assert.False(t, after.DeletedAt.Valid)
}

func TestSinglePinnedProject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := NewActor(f.admin)

	pinned, err := f.projects.CreateProject(ctx, admin, dto.CreateProjectRequest{
		Title:    "Pinned",
		DueDate:  f.clock.Now().AddDate(0, 1, 0),
		IsPinned: true,
	})
	require.NoError(t, err)

	_, err = f.projects.CreateProject(ctx, admin, dto.CreateProjectRequest{
		Title:    "Second pin",
		DueDate:  f.clock.Now().AddDate(0, 1, 0),
		IsPinned: true,
	})
	var conflict *InvalidPinnedProjectError
	require.ErrorAs(t, err, &conflict)
	require.NotNil(t, conflict.Pinned)
	assert.Equal(t, pinned.ID, conflict.Pinned.ID)

	other := f.createProject(t, admin, "Other")
	_, err = f.projects.UpdateProject(ctx, admin, other.ID, dto.UpdateProjectRequest{IsPinned: utils.Ptr(true)})
	require.ErrorAs(t, err, &conflict)

	var pinnedCount int64
	require.NoError(t, f.db.Model(&models.Project{}).Where("is_pinned = ?", true).Count(&pinnedCount).Error)
	assert.Equal(t, int64(1), pinnedCount)
	assert.True(t, loadProject(t, f, pinned.ID).IsPinned)
	assert.False(t, loadProject(t, f, other.ID).IsPinned)

	// moving the pin: unpin first, then pin the other project
	_, err = f.projects.UpdateProject(ctx, admin, pinned.ID, dto.UpdateProjectRequest{IsPinned: utils.Ptr(false)})
	require.NoError(t, err)
	moved, err := f.projects.UpdateProject(ctx, admin, other.ID, dto.UpdateProjectRequest{IsPinned: utils.Ptr(true)})
	require.NoError(t, err)
	assert.True(t, moved.IsPinned)
}

func TestPinRequiresPermission(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	employee := NewActor(f.employee)

	_, err := f.projects.CreateProject(ctx, employee, dto.CreateProjectRequest{
		Title:    "Mine",
		DueDate:  f.clock.Now().AddDate(0, 1, 0),
		IsPinned: true,
	})
	var unauthorized *UnauthorizedPinError
	require.ErrorAs(t, err, &unauthorized)

	var count int64
	require.NoError(t, f.db.Model(&models.Project{}).Count(&count).Error)
	assert.Zero(t, count)

	project := f.createProject(t, employee, "Mine")
	_, err = f.projects.UpdateProject(ctx, employee, project.ID, dto.UpdateProjectRequest{IsPinned: utils.Ptr(true)})
	require.ErrorAs(t, err, &unauthorized)
}

func TestDeletePinnedProjectFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := NewActor(f.admin)

	project, err := f.projects.CreateProject(ctx, admin, dto.CreateProjectRequest{
		Title:    "Pinned",
		DueDate:  f.clock.Now().AddDate(0, 1, 0),
		IsPinned: true,
	})
	require.NoError(t, err)
	task := f.createTask(t, admin, project.ID, "keep")

	_, err = f.projects.DeleteProject(ctx, admin, project.ID)
	var pinnedErr *PinnedProjectDeletionError
	require.ErrorAs(t, err, &pinnedErr)

	assert.False(t, loadProject(t, f, project.ID).DeletedAt.Valid)
	assert.False(t, loadTask(t, f, task.ID).DeletedAt.Valid)
}

func TestUpdateRestoredProjectIsAllowed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := NewActor(f.admin)

	project := f.createProject(t, admin, "Back again")
	_, err := f.projects.DeleteProject(ctx, admin, project.ID)
	require.NoError(t, err)
	_, err = f.projects.RestoreProject(ctx, admin, project.ID)
	require.NoError(t, err)

	updated, err := f.projects.UpdateProject(ctx, admin, project.ID, dto.UpdateProjectRequest{
		Title:  utils.Ptr("Renamed"),
		Status: utils.Ptr(models.StatusOpen),
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, models.StatusOpen, updated.Status)
}

func TestUpdateProjectRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)
	admin := NewActor(f.admin)
	project := f.createProject(t, admin, "Status")

	_, err := f.projects.UpdateProject(context.Background(), admin, project.ID, dto.UpdateProjectRequest{
		Status: utils.Ptr(models.Status("archived")),
	})
	var invalid *InvalidStatusError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, models.StatusOpen, loadProject(t, f, project.ID).Status)
}

func TestDeleteThenRestoreScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := NewActor(f.admin)
	employee := NewActor(f.employee)

	project, err := f.projects.CreateProject(ctx, admin, dto.CreateProjectRequest{
		Title:     "Scenario",
		DueDate:   f.clock.Now().AddDate(0, 1, 0),
		ManagerID: utils.Ptr(f.manager.ID),
	})
	require.NoError(t, err)

	task, err := f.tasks.CreateTask(ctx, admin, project.ID, dto.CreateTaskRequest{
		Title:      "T1",
		AssigneeID: utils.Ptr(f.employee.ID),
	})
	require.NoError(t, err)

	before := loadProject(t, f, project.ID)

	_, err = f.tasks.DeleteTask(ctx, employee, task.ID, false)
	require.NoError(t, err)
	directDeletion := f.clock.Now()

	t1 := loadTask(t, f, task.ID)
	require.True(t, t1.DeletedAt.Valid)
	assert.Equal(t, models.StatusClosed, t1.Status)
	assert.Nil(t, t1.AssigneeID)

	unaffected := loadProject(t, f, project.ID)
	assert.False(t, unaffected.DeletedAt.Valid)
	assert.Equal(t, before.Status, unaffected.Status)
	assert.True(t, before.UpdatedAt.Equal(unaffected.UpdatedAt))

	f.clock.Advance(time.Second)
	_, err = f.projects.DeleteProject(ctx, admin, project.ID)
	require.NoError(t, err)

	deleted := loadProject(t, f, project.ID)
	assert.True(t, deleted.DeletedAt.Valid)
	assert.Equal(t, models.StatusClosed, deleted.Status)
	assert.Nil(t, deleted.ManagerID)
	assert.True(t, loadTask(t, f, task.ID).DeletedAt.Time.Equal(directDeletion))

	restored, err := f.projects.RestoreProject(ctx, admin, project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRestored, restored.Status)
	assert.False(t, loadProject(t, f, project.ID).DeletedAt.Valid)

	t1 = loadTask(t, f, task.ID)
	assert.True(t, t1.DeletedAt.Valid)
	assert.True(t, t1.DeletedAt.Time.Equal(directDeletion))
}

func TestManagerReassignmentNotifiesNewManagerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := NewActor(f.manager)
	second := createUser(t, f.db, models.RoleManager)

	project, err := f.projects.CreateProject(ctx, owner, dto.CreateProjectRequest{
		Title:     "Quarterly plan",
		DueDate:   f.clock.Now().AddDate(0, 3, 0),
		ManagerID: utils.Ptr(f.manager.ID),
	})
	require.NoError(t, err)

	_, err = f.projects.UpdateProject(ctx, owner, project.ID, dto.UpdateProjectRequest{
		ManagerID: utils.Ptr(second.ID),
	})
	require.NoError(t, err)

	received := f.notifier.To(second.ID)
	require.Len(t, received, 1)
	assert.Equal(t, EventProjectAssigned, received[0].Event.Type)
	assert.Equal(t, project.ID, received[0].Event.Project.ID)
	assert.Empty(t, f.notifier.To(f.manager.ID))

	// same manager again is not a change
	_, err = f.projects.UpdateProject(ctx, owner, project.ID, dto.UpdateProjectRequest{
		ManagerID: utils.Ptr(second.ID),
	})
	require.NoError(t, err)
	assert.Len(t, f.notifier.To(second.ID), 1)
}

func TestForceDeleteProject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := NewActor(f.admin)

	project := f.createProject(t, admin, "Purge")
	task := f.createTask(t, admin, project.ID, "gone")

	err := f.projects.ForceDeleteProject(ctx, admin, project.ID)
	var notDeleted *NotDeletedError
	require.ErrorAs(t, err, &notDeleted)

	_, err = f.projects.DeleteProject(ctx, admin, project.ID)
	require.NoError(t, err)
	require.NoError(t, f.projects.ForceDeleteProject(ctx, admin, project.ID))

	var projects, tasks int64
	require.NoError(t, f.db.Unscoped().Model(&models.Project{}).Where("id = ?", project.ID).Count(&projects).Error)
	require.NoError(t, f.db.Unscoped().Model(&models.Task{}).Where("id = ?", task.ID).Count(&tasks).Error)
	assert.Zero(t, projects)
	assert.Zero(t, tasks)
}

func TestListProjectsTrashedFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := NewActor(f.admin)

	f.createProject(t, admin, "Alpha")
	beta := f.createProject(t, admin, "Beta")
	_, err := f.projects.DeleteProject(ctx, admin, beta.ID)
	require.NoError(t, err)

	active, err := f.projects.ListProjects(ctx, dto.ProjectFilter{})
	require.NoError(t, err)
	require.Len(t, active.Projects, 1)
	assert.Equal(t, "Alpha", active.Projects[0].Title)

	only, err := f.projects.ListProjects(ctx, dto.ProjectFilter{Trashed: dto.TrashedOnly})
	require.NoError(t, err)
	require.Len(t, only.Projects, 1)
	assert.Equal(t, beta.ID, only.Projects[0].ID)

	with, err := f.projects.ListProjects(ctx, dto.ProjectFilter{Trashed: dto.TrashedWith, Search: "a"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), with.TotalCount)
}
