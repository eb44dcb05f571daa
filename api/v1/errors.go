package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskdesk/services"
	"github.com/taskdesk/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// statusFor maps a service error to an HTTP status code
func statusFor(err error) int {
	var (
		unauthorizedPin *services.UnauthorizedPinError
		pinConflict     *services.InvalidPinnedProjectError
		pinnedDeletion  *services.PinnedProjectDeletionError
		notDeleted      *services.NotDeletedError
		createTask      *services.CreateTaskError
		updateTask      *services.UpdateTaskError
		taskRestored    *services.TaskRestoredError
		inactiveProject *services.InvalidProjectStatusError
		projectDeleted  *services.ProjectDeletedError
		invalidStatus   *services.InvalidStatusError
	)

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &unauthorizedPin):
		return http.StatusForbidden
	case errors.As(err, &pinConflict), errors.As(err, &pinnedDeletion), errors.As(err, &notDeleted),
		errors.Is(err, services.ErrEmailTaken):
		return http.StatusConflict
	case errors.As(err, &createTask), errors.As(err, &updateTask), errors.As(err, &taskRestored),
		errors.As(err, &inactiveProject), errors.As(err, &projectDeleted), errors.As(err, &invalidStatus),
		errors.Is(err, services.ErrUnsupportedImage), errors.Is(err, services.ErrInvalidRole):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err in the error envelope. Internal errors are logged
// and hidden from the client.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusNotFound {
		message = "Resource not found"
	}
	if status == http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		message = "Internal server error"
	}

	c.JSON(status, gin.H{
		"status":  "error",
		"message": message,
	})
}

func respondInvalidBody(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"status":  "error",
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}
