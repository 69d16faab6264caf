package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/tanvir-rahman/class-forum/backend/internal/middleware"
	"github.com/tanvir-rahman/class-forum/backend/internal/models"
)

// maxUploadSize caps each attachment at 10MB
const maxUploadSize = 10 << 20

// allowedUploadTypes maps accepted file extensions to their MIME types
var allowedUploadTypes = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

// UploadHandler handles attachment uploads to Firebase Storage
type UploadHandler struct {
	bucket *storage.BucketHandle
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(bucket *storage.BucketHandle) *UploadHandler {
	return &UploadHandler{bucket: bucket}
}

// RegisterUploadRoutes registers upload routes; the group is mounted behind
// the moderator guard since only teachers and admins may attach files
func (h *UploadHandler) RegisterUploadRoutes(g *echo.Group) {
	g.POST("/uploads", h.Upload)
}

// Upload stores one or more multipart files in the storage bucket under the
// caller's directory and returns their metadata
func (h *UploadHandler) Upload(c echo.Context) error {
	if h.bucket == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "File storage is not configured")
	}

	user := middleware.CurrentUser(c)

	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid multipart form")
	}
	files := form.File["files"]
	if len(files) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "No files provided")
	}

	ctx := c.Request().Context()
	attachments := make([]models.Attachment, 0, len(files))

	for _, fileHeader := range files {
		if fileHeader.Size > maxUploadSize {
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, fmt.Sprintf("File %s exceeds the 10MB limit", fileHeader.Filename))
		}

		ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
		contentType, ok := allowedUploadTypes[ext]
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("File type %s is not allowed", ext))
		}

		src, err := fileHeader.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read uploaded file")
		}

		objectPath := fmt.Sprintf("%d/%d-%s%s", user.ID, time.Now().UnixNano(), uuid.NewString(), ext)
		obj := h.bucket.Object(objectPath)
		writer := obj.NewWriter(ctx)
		writer.ContentType = contentType

		if _, err := io.Copy(writer, src); err != nil {
			src.Close()
			writer.Close()
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store uploaded file")
		}
		src.Close()
		if err := writer.Close(); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store uploaded file")
		}

		attachments = append(attachments, models.Attachment{
			Name: fileHeader.Filename,
			URL:  fmt.Sprintf("https://storage.googleapis.com/%s/%s", obj.BucketName(), obj.ObjectName()),
			Size: fileHeader.Size,
			Type: contentType,
			Path: objectPath,
		})
	}

	return c.JSON(http.StatusCreated, echo.Map{"files": attachments})
}
