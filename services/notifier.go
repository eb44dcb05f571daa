package services

import (
	"github.com/taskdesk/models"
	"go.uber.org/zap"
)

// EventType identifies a notification
type EventType string

const (
	EventProjectAssigned  EventType = "project.assigned"
	EventTaskAssigned     EventType = "task.assigned"
	EventProjectDueSoon   EventType = "project.due_soon"
	EventProjectExpired   EventType = "project.expired"
	EventExpirationReport EventType = "project.expiration_report"
)

// Event is the payload handed to a Notifier
type Event struct {
	Type     EventType
	Project  *models.Project
	Task     *models.Task
	Projects []models.Project
}

// Notifier delivers events to users. Notify must not block on delivery.
type Notifier interface {
	Notify(recipient models.User, event Event)
}

// LogNotifier only logs events; used when mail is not configured
type LogNotifier struct {
	Log *zap.Logger
}

// Notify writes the event to the log instead of delivering it
func (n LogNotifier) Notify(recipient models.User, event Event) {
	if n.Log == nil {
		return
	}
	n.Log.Info("notification",
		zap.String("to", recipient.Email),
		zap.String("event", string(event.Type)),
	)
}
