package v1

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskdesk/services"
	"go.uber.org/zap"
)

const maxImageSize = 5 << 20

// ImageController handles task image endpoints
type ImageController struct {
	imageService *services.ImageService
	log          *zap.Logger
}

// NewImageController creates a new image controller
func NewImageController(imageService *services.ImageService, log *zap.Logger) *ImageController {
	return &ImageController{imageService: imageService, log: log}
}

// RegisterRoutes registers image routes
func (ic *ImageController) RegisterRoutes(router *gin.RouterGroup) {
	images := router.Group("/tasks/:id/images")
	{
		images.GET("", ic.ListImages)
		images.POST("", ic.UploadImage)
		images.GET("/:imageId", ic.DownloadImage)
		images.DELETE("/:imageId", ic.DeleteImage)
	}
}

// ListImages lists the images of a task
func (ic *ImageController) ListImages(c *gin.Context) {
	images, err := ic.imageService.ListImages(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, ic.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   images,
	})
}

// UploadImage attaches the multipart "image" file to a task
func (ic *ImageController) UploadImage(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "An image file is required",
		})
		return
	}
	if header.Size > maxImageSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"status":  "error",
			"message": "Image exceeds the 5MB limit",
		})
		return
	}

	file, err := header.Open()
	if err != nil {
		respondError(c, ic.log, err)
		return
	}
	defer file.Close()

	image, err := ic.imageService.AddImage(c.Request.Context(), actorFromContext(c), c.Param("id"),
		header.Filename, header.Size, file)
	if err != nil {
		respondError(c, ic.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "Image uploaded successfully",
		"data":    image,
	})
}

// DownloadImage streams the stored image
func (ic *ImageController) DownloadImage(c *gin.Context) {
	image, body, err := ic.imageService.OpenImage(c.Request.Context(), c.Param("id"), c.Param("imageId"))
	if err != nil {
		respondError(c, ic.log, err)
		return
	}
	defer body.Close()

	c.DataFromReader(http.StatusOK, image.Size, image.ContentType, body, map[string]string{
		"Content-Disposition":    mime.FormatMediaType("inline", map[string]string{"filename": image.FileName}),
		"X-Content-Type-Options": "nosniff",
	})
}

// DeleteImage removes an image from a task
func (ic *ImageController) DeleteImage(c *gin.Context) {
	if err := ic.imageService.DeleteImage(c.Request.Context(), actorFromContext(c), c.Param("id"), c.Param("imageId")); err != nil {
		respondError(c, ic.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Image deleted successfully",
	})
}
