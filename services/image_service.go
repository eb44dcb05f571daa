package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/taskdesk/models"
	"github.com/taskdesk/repositories"
	"github.com/taskdesk/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrUnsupportedImage is returned for uploads that are not raster images
var ErrUnsupportedImage = errors.New("only png, jpeg, gif and webp images are accepted")

// imageTypes are the detected formats accepted for upload. SVG is excluded
// because it can carry script.
var imageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

const sniffLen = 3072

// ImageService manages the images attached to tasks. A task keeps at most
// models.MaxTaskImages images; adding one more evicts the oldest.
type ImageService struct {
	db    *gorm.DB
	media storage.Store
	log   *zap.Logger
	now   Clock
}

// NewImageService creates a new image service instance
func NewImageService(db *gorm.DB, media storage.Store, log *zap.Logger) *ImageService {
	return &ImageService{db: db, media: media, log: log, now: DefaultClock}
}

// WithClock replaces the time source
func (s *ImageService) WithClock(clock Clock) *ImageService {
	s.now = clock
	return s
}

// ListImages returns the images of an active task, oldest first
func (s *ImageService) ListImages(ctx context.Context, taskID string) ([]models.TaskImage, error) {
	db := s.db.WithContext(ctx)
	if _, err := repositories.NewTaskRepository(db).FindByID(taskID); err != nil {
		return nil, err
	}
	return repositories.NewTaskImageRepository(db).FindByTaskID(taskID)
}

// AddImage stores body and attaches it to the task, evicting the oldest
// images beyond the per-task limit. The content type is detected from the
// bytes; whatever the client declared is ignored.
func (s *ImageService) AddImage(ctx context.Context, actor Actor, taskID, fileName string, size int64, body io.Reader) (models.TaskImage, error) {
	detected, body, err := sniffImage(body)
	if err != nil {
		return models.TaskImage{}, err
	}
	contentType := detected.String()

	image := models.TaskImage{
		ID:          uuid.NewString(),
		TaskID:      taskID,
		FileName:    path.Base(fileName),
		ContentType: contentType,
		Size:        size,
	}
	image.StorageKey = fmt.Sprintf("tasks/%s/%s%s", taskID, image.ID, detected.Extension())

	if _, err := repositories.NewTaskRepository(s.db.WithContext(ctx)).FindByID(taskID); err != nil {
		return image, err
	}

	if err := s.media.Put(ctx, image.StorageKey, body, contentType); err != nil {
		return image, fmt.Errorf("error storing image: %w", err)
	}

	var evicted []models.TaskImage
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		images := repositories.NewTaskImageRepository(tx)

		// concurrent uploads to one task serialize here so the cap holds
		task, err := repositories.NewTaskRepository(tx).LockByID(taskID)
		if err != nil {
			return err
		}
		if err := s.ensureWritable(task); err != nil {
			return err
		}

		image.CreatedAt = s.now()
		if err := images.Create(&image); err != nil {
			return err
		}

		all, err := images.FindByTaskID(taskID)
		if err != nil {
			return err
		}
		if over := len(all) - models.MaxTaskImages; over > 0 {
			evicted = all[:over]
			ids := make([]string, 0, over)
			for _, old := range evicted {
				ids = append(ids, old.ID)
			}
			if err := images.Delete(ids...); err != nil {
				return err
			}
		}

		return recordActivity(tx, actor, "task.image_added", "task", taskID, map[string]interface{}{
			"imageId": image.ID,
			"evicted": len(evicted),
		})
	})
	if err != nil {
		if delErr := s.media.Delete(ctx, image.StorageKey); delErr != nil {
			s.log.Warn("failed to remove orphaned upload", zap.String("key", image.StorageKey), zap.Error(delErr))
		}
		return image, err
	}

	removeMedia(ctx, s.media, s.log, evicted)
	return image, nil
}

// DeleteImage detaches an image from a task and removes the stored object
func (s *ImageService) DeleteImage(ctx context.Context, actor Actor, taskID, imageID string) error {
	var image models.TaskImage

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		images := repositories.NewTaskImageRepository(tx)

		task, err := repositories.NewTaskRepository(tx).LockByID(taskID)
		if err != nil {
			return err
		}
		if err := s.ensureWritable(task); err != nil {
			return err
		}

		image, err = images.FindByID(taskID, imageID)
		if err != nil {
			return err
		}
		if err := images.Delete(image.ID); err != nil {
			return err
		}

		return recordActivity(tx, actor, "task.image_removed", "task", taskID, map[string]interface{}{
			"imageId": image.ID,
		})
	})
	if err != nil {
		return err
	}

	removeMedia(ctx, s.media, s.log, []models.TaskImage{image})
	return nil
}

// OpenImage returns the image record and a reader over its bytes
func (s *ImageService) OpenImage(ctx context.Context, taskID, imageID string) (models.TaskImage, io.ReadCloser, error) {
	image, err := repositories.NewTaskImageRepository(s.db.WithContext(ctx)).FindByID(taskID, imageID)
	if err != nil {
		return image, nil, err
	}
	body, err := s.media.Open(ctx, image.StorageKey)
	if err != nil {
		return image, nil, err
	}
	return image, body, nil
}

// Images follow the task edit rules: the parent project must accept changes
// and a restored task is read-only.
func (s *ImageService) ensureWritable(task models.Task) error {
	if task.Project == nil || !task.Project.Status.AcceptsTasks() {
		return &UpdateTaskError{Task: task}
	}
	if task.Status == models.StatusRestored {
		return &TaskRestoredError{Task: task}
	}
	return nil
}

// sniffImage detects the format from the leading bytes and returns a reader
// that still yields the whole body.
func sniffImage(body io.Reader) (*mimetype.MIME, io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(body, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, nil, fmt.Errorf("error reading upload: %w", err)
	}
	head = head[:n]

	detected := mimetype.Detect(head)
	if !imageTypes[detected.String()] {
		return nil, nil, ErrUnsupportedImage
	}
	return detected, io.MultiReader(bytes.NewReader(head), body), nil
}
