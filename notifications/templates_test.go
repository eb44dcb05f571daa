package notifications

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdesk/models"
	"github.com/taskdesk/services"
	"gorm.io/datatypes"
)

func TestRenderProjectAssigned(t *testing.T) {
	recipient := models.User{Name: "Mira", Email: "mira@example.com"}
	project := &models.Project{
		Title:   "Launch <beta>",
		DueDate: datatypes.Date(time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC)),
	}

	msg, err := Render(recipient, services.Event{Type: services.EventProjectAssigned, Project: project})
	require.NoError(t, err)

	assert.Equal(t, "mira@example.com", msg.To)
	assert.Equal(t, `You are now managing "Launch <beta>"`, msg.Subject)
	assert.Contains(t, msg.Text, "2026-06-30")
	assert.Contains(t, msg.HTML, "Launch &lt;beta&gt;")
	assert.NotContains(t, msg.HTML, "<beta>")
}

func TestRenderExpirationReport(t *testing.T) {
	due := datatypes.Date(time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC))
	msg, err := Render(models.User{Name: "Admin", Email: "admin@example.com"}, services.Event{
		Type: services.EventExpirationReport,
		Projects: []models.Project{
			{Title: "One", DueDate: due},
			{Title: "Two", DueDate: due},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "2 project(s) expired", msg.Subject)
	assert.Contains(t, msg.Text, "- One (due 2026-01-05)")
	assert.Contains(t, msg.Text, "- Two (due 2026-01-05)")
}

func TestRenderTaskAssignedWithoutProject(t *testing.T) {
	msg, err := Render(models.User{Name: "Eli", Email: "eli@example.com"}, services.Event{
		Type: services.EventTaskAssigned,
		Task: &models.Task{Title: "Write tests"},
	})
	require.NoError(t, err)
	assert.Equal(t, "New task: Write tests", msg.Subject)
	assert.NotContains(t, msg.Text, "in project")
}

func TestRenderUnknownEvent(t *testing.T) {
	_, err := Render(models.User{Email: "x@example.com"}, services.Event{Type: "unknown"})
	assert.Error(t, err)
}
