package services

import (
	"fmt"

	"github.com/taskdesk/models"
)

// PinnedProjectDeletionError is returned when deleting the pinned project
type PinnedProjectDeletionError struct {
	Project models.Project
}

func (e *PinnedProjectDeletionError) Error() string {
	return fmt.Sprintf("cannot delete pinned project %q", e.Project.Title)
}

// UnauthorizedPinError is returned when an actor without pin permission pins a project
type UnauthorizedPinError struct {
	Project models.Project
}

func (e *UnauthorizedPinError) Error() string {
	return fmt.Sprintf("not allowed to pin project %q", e.Project.Title)
}

// InvalidPinnedProjectError is returned when another project is already pinned
type InvalidPinnedProjectError struct {
	Project models.Project
	// Pinned is the project currently holding the pin, when known
	Pinned *models.Project
}

func (e *InvalidPinnedProjectError) Error() string {
	if e.Pinned != nil {
		return fmt.Sprintf("project %q is already pinned", e.Pinned.Title)
	}
	return "another project is already pinned"
}

// CreateTaskError is returned when adding a task to a project that is not open or pending
type CreateTaskError struct {
	Project models.Project
}

func (e *CreateTaskError) Error() string {
	return fmt.Sprintf("cannot create a task on project %q with status %s", e.Project.Title, e.Project.Status)
}

// UpdateTaskError is returned when editing a task whose project is not open or pending
type UpdateTaskError struct {
	Task models.Task
}

func (e *UpdateTaskError) Error() string {
	status := models.Status("")
	if e.Task.Project != nil {
		status = e.Task.Project.Status
	}
	return fmt.Sprintf("cannot update task %q while its project is %s", e.Task.Title, status)
}

// TaskRestoredError is returned when editing a restored task before moving it out of "restored"
type TaskRestoredError struct {
	Task models.Task
}

func (e *TaskRestoredError) Error() string {
	return fmt.Sprintf("task %q was restored; change its status before editing", e.Task.Title)
}

// InvalidProjectStatusError is returned when restoring a task of an inactive project
type InvalidProjectStatusError struct {
	Task    models.Task
	Project models.Project
}

func (e *InvalidProjectStatusError) Error() string {
	return fmt.Sprintf("project %q is inactive (%s)", e.Project.Title, e.Project.Status)
}

// ProjectDeletedError is returned when restoring a task of a trashed project
type ProjectDeletedError struct {
	Task    models.Task
	Project models.Project
}

func (e *ProjectDeletedError) Error() string {
	return fmt.Sprintf("project %q has been deleted", e.Project.Title)
}

// NotDeletedError is returned when restoring or purging something that is not trashed
type NotDeletedError struct {
	Subject string
	ID      string
}

func (e *NotDeletedError) Error() string {
	return fmt.Sprintf("%s %s has not been deleted", e.Subject, e.ID)
}

// InvalidStatusError is returned for a status outside the vocabulary
type InvalidStatusError struct {
	Status models.Status
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid status %q", e.Status)
}

func validateStatus(status models.Status) error {
	if !status.Valid() {
		return &InvalidStatusError{Status: status}
	}
	return nil
}
