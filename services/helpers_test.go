package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/taskdesk/database/dbtest"
	"github.com/taskdesk/dto"
	"github.com/taskdesk/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type sentNotification struct {
	Recipient models.User
	Event     Event
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *recordingNotifier) Notify(recipient models.User, event Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{Recipient: recipient, Event: event})
}

func (n *recordingNotifier) To(userID string) []sentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []sentNotification
	for _, s := range n.sent {
		if s.Recipient.ID == userID {
			out = append(out, s)
		}
	}
	return out
}

func (n *recordingNotifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	db       *gorm.DB
	clock    *testClock
	notifier *recordingNotifier
	projects *ProjectService
	tasks    *TaskService

	admin    models.User
	manager  models.User
	employee models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := dbtest.New(t)
	clock := newTestClock()
	notifier := &recordingNotifier{}

	f := &fixture{
		db:       db,
		clock:    clock,
		notifier: notifier,
		projects: NewProjectService(db, notifier, nil, zap.NewNop()).WithClock(clock.Now),
		tasks:    NewTaskService(db, notifier, zap.NewNop()).WithClock(clock.Now),
	}
	f.admin = createUser(t, db, models.RoleAdmin)
	f.manager = createUser(t, db, models.RoleManager)
	f.employee = createUser(t, db, models.RoleEmployee)
	return f
}

func (f *fixture) createProject(t *testing.T, actor Actor, title string) models.Project {
	t.Helper()
	project, err := f.projects.CreateProject(context.Background(), actor, dto.CreateProjectRequest{
		Title:   title,
		DueDate: f.clock.Now().AddDate(0, 1, 0),
	})
	require.NoError(t, err)
	return project
}

func (f *fixture) createTask(t *testing.T, actor Actor, projectID, title string) models.Task {
	t.Helper()
	task, err := f.tasks.CreateTask(context.Background(), actor, projectID, dto.CreateTaskRequest{Title: title})
	require.NoError(t, err)
	return task
}

func createUser(t *testing.T, db *gorm.DB, role models.Role) models.User {
	t.Helper()
	user := models.User{
		Email:    uuid.NewString() + "@example.com",
		Name:     string(role),
		Password: "secret",
		Role:     role,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}
