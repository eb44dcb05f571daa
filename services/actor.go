package services

import (
	"time"

	"github.com/taskdesk/models"
)

// Permission names a capability checked against an actor's role
type Permission string

const (
	PermissionPinProject         Permission = "projects.pin"
	PermissionDeleteProject      Permission = "projects.delete"
	PermissionRestoreProject     Permission = "projects.restore"
	PermissionForceDeleteProject Permission = "projects.force_delete"
	PermissionRestoreTask        Permission = "tasks.restore"
	PermissionViewActivity       Permission = "activity.view"
)

var rolePermissions = map[models.Role]map[Permission]bool{
	models.RoleAdmin: {
		PermissionPinProject:         true,
		PermissionDeleteProject:      true,
		PermissionRestoreProject:     true,
		PermissionForceDeleteProject: true,
		PermissionRestoreTask:        true,
		PermissionViewActivity:       true,
	},
	models.RoleManager: {
		PermissionPinProject:     true,
		PermissionDeleteProject:  true,
		PermissionRestoreProject: true,
		PermissionRestoreTask:    true,
	},
	models.RoleEmployee: {},
}

// Actor is the user on whose behalf a lifecycle operation runs
type Actor struct {
	ID   string
	Role models.Role
}

// NewActor builds an actor from a user record
func NewActor(user models.User) Actor {
	return Actor{ID: user.ID, Role: user.Role}
}

// Can reports whether the actor's role grants permission
func (a Actor) Can(permission Permission) bool {
	return rolePermissions[a.Role][permission]
}

// SystemActor is used by scheduled jobs
var SystemActor = Actor{Role: models.RoleAdmin}

// Clock returns the current time
type Clock func() time.Time

// DefaultClock returns UTC time truncated to the precision the database keeps
func DefaultClock() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
