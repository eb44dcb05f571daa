package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdesk/models"
	"github.com/taskdesk/storage"
	"go.uber.org/zap"
)

func newImageFixture(t *testing.T) (*fixture, *ImageService, *storage.LocalStore) {
	t.Helper()
	f := newFixture(t)
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	f.projects = NewProjectService(f.db, f.notifier, store, zap.NewNop()).WithClock(f.clock.Now)
	return f, NewImageService(f.db, store, zap.NewNop()).WithClock(f.clock.Now), store
}

const pngHeader = "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"

func addImage(t *testing.T, images *ImageService, actor Actor, taskID, name string) models.TaskImage {
	t.Helper()
	body := pngHeader + "bytes of " + name
	image, err := images.AddImage(context.Background(), actor, taskID, name, int64(len(body)), strings.NewReader(body))
	require.NoError(t, err)
	return image
}

func TestAddImageEvictsOldest(t *testing.T) {
	f, images, store := newImageFixture(t)
	ctx := context.Background()
	admin := NewActor(f.admin)

	project := f.createProject(t, admin, "Gallery")
	task := f.createTask(t, admin, project.ID, "shots")

	var added []models.TaskImage
	for i := 1; i <= models.MaxTaskImages+1; i++ {
		added = append(added, addImage(t, images, admin, task.ID, fmt.Sprintf("shot-%d.png", i)))
		f.clock.Advance(time.Second)
	}

	kept, err := images.ListImages(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, kept, models.MaxTaskImages)
	assert.Equal(t, added[1].ID, kept[0].ID)
	assert.Equal(t, added[len(added)-1].ID, kept[len(kept)-1].ID)

	_, err = store.Open(ctx, added[0].StorageKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	image, body, err := images.OpenImage(ctx, task.ID, added[1].ID)
	require.NoError(t, err)
	defer body.Close()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "shot-2.png", image.FileName)
	assert.Equal(t, pngHeader+"bytes of shot-2.png", string(data))
}

func TestAddImageRejectsNonImages(t *testing.T) {
	f, images, _ := newImageFixture(t)
	admin := NewActor(f.admin)
	project := f.createProject(t, admin, "Docs")
	task := f.createTask(t, admin, project.ID, "pdf")

	tests := []struct {
		name string
		file string
		body string
	}{
		{"pdf", "notes.pdf", "%PDF-1.7\n"},
		{"svg with script", "x.svg", "<svg xmlns=\"http://www.w3.org/2000/svg\"><script>alert(document.cookie)</script></svg>"},
		{"html named as png", "pic.png", "<html><body>hi</body></html>"},
		{"plain text", "a.png", "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := images.AddImage(context.Background(), admin, task.ID, tt.file, int64(len(tt.body)), strings.NewReader(tt.body))
			assert.ErrorIs(t, err, ErrUnsupportedImage)
		})
	}

	stored, err := images.ListImages(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestAddImageUsesDetectedType(t *testing.T) {
	f, images, store := newImageFixture(t)
	ctx := context.Background()
	admin := NewActor(f.admin)
	project := f.createProject(t, admin, "Formats")
	task := f.createTask(t, admin, project.ID, "gif")

	body := "GIF89a" + strings.Repeat("\x00", 16)
	image, err := images.AddImage(ctx, admin, task.ID, "photo.png", int64(len(body)), strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, "image/gif", image.ContentType)
	assert.True(t, strings.HasSuffix(image.StorageKey, ".gif"), image.StorageKey)
	assert.Equal(t, "photo.png", image.FileName)

	reader, err := store.Open(ctx, image.StorageKey)
	require.NoError(t, err)
	defer reader.Close()
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, body, string(data))
}

func TestAddImageToRestoredTaskFails(t *testing.T) {
	f, images, store := newImageFixture(t)
	ctx := context.Background()
	admin := NewActor(f.admin)
	project := f.createProject(t, admin, "Restored")
	task := f.createTask(t, admin, project.ID, "locked")

	_, err := f.tasks.DeleteTask(ctx, admin, task.ID, false)
	require.NoError(t, err)
	_, err = f.tasks.RestoreTask(ctx, admin, task.ID)
	require.NoError(t, err)

	image, err := images.AddImage(ctx, admin, task.ID, "a.png", int64(len(pngHeader)), strings.NewReader(pngHeader))
	var restoredErr *TaskRestoredError
	require.ErrorAs(t, err, &restoredErr)

	// the uploaded object is cleaned up when the row is not written
	_, err = store.Open(ctx, image.StorageKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeleteImage(t *testing.T) {
	f, images, store := newImageFixture(t)
	ctx := context.Background()
	admin := NewActor(f.admin)
	project := f.createProject(t, admin, "P")
	task := f.createTask(t, admin, project.ID, "T")

	image := addImage(t, images, admin, task.ID, "one.png")
	require.NoError(t, images.DeleteImage(ctx, admin, task.ID, image.ID))

	remaining, err := images.ListImages(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
	_, err = store.Open(ctx, image.StorageKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestForceDeleteProjectRemovesStoredImages(t *testing.T) {
	f, images, store := newImageFixture(t)
	ctx := context.Background()
	admin := NewActor(f.admin)
	project := f.createProject(t, admin, "P")
	task := f.createTask(t, admin, project.ID, "T")
	image := addImage(t, images, admin, task.ID, "one.png")

	_, err := f.projects.DeleteProject(ctx, admin, project.ID)
	require.NoError(t, err)
	require.NoError(t, f.projects.ForceDeleteProject(ctx, admin, project.ID))

	_, err = store.Open(ctx, image.StorageKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	var count int64
	require.NoError(t, f.db.Model(&models.TaskImage{}).Count(&count).Error)
	assert.Zero(t, count)
}
