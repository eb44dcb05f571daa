package models

// Status is the lifecycle state shared by projects and tasks
type Status string

const (
	StatusOpen      Status = "open"
	StatusPending   Status = "pending"
	StatusClosed    Status = "closed"
	StatusCompleted Status = "completed"
	StatusExpired   Status = "expired"
	StatusRestored  Status = "restored"
)

// Statuses lists every known status
var Statuses = []Status{
	StatusOpen,
	StatusPending,
	StatusClosed,
	StatusCompleted,
	StatusExpired,
	StatusRestored,
}

// Valid reports whether s is part of the status vocabulary
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// AcceptsTasks reports whether a project in this status may get new or edited tasks
func (s Status) AcceptsTasks() bool {
	return s == StatusOpen || s == StatusPending
}

// Inactive reports whether a project in this status blocks task restoration
func (s Status) Inactive() bool {
	return s == StatusClosed || s == StatusCompleted || s == StatusExpired
}
