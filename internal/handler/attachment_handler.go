package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fitpulse/fitpulse-backend/internal/common"
	"github.com/fitpulse/fitpulse-backend/internal/domain"
	"github.com/fitpulse/fitpulse-backend/pkg/storage"
)

const maxAttachmentSize = 20 << 20 // 20 MiB

var allowedAttachmentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"video/mp4":       true,
	"application/pdf": true,
}

// AttachmentHandler uploads message attachments to object storage. The
// returned metadata is echoed back by the client in a follow-up send.
type AttachmentHandler struct {
	storage *storage.S3Client
}

// NewAttachmentHandler creates a new AttachmentHandler
func NewAttachmentHandler(storage *storage.S3Client) *AttachmentHandler {
	return &AttachmentHandler{storage: storage}
}

// Upload handles POST /api/v1/attachments
// @Summary Upload a message attachment
// @Tags attachments
// @Router /api/v1/attachments [post]
func (h *AttachmentHandler) Upload(c *gin.Context) {
	if h.storage == nil {
		common.ErrorResponse(c, http.StatusServiceUnavailable, "Attachment storage not configured", nil)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Missing file field", err)
		return
	}
	if fileHeader.Size > maxAttachmentSize {
		common.ErrorResponse(c, http.StatusBadRequest, "File too large", nil)
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !allowedAttachmentTypes[contentType] {
		common.ErrorResponse(c, http.StatusBadRequest, "Unsupported file type", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to read upload", err)
		return
	}
	defer file.Close()

	key := storage.GenerateKey("chat", fileHeader.Filename)
	result, err := h.storage.Upload(c.Request.Context(), key, file, contentType, fileHeader.Size)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Upload failed", err)
		return
	}

	url := result.URL
	if result.CDNURL != "" {
		url = result.CDNURL
	}

	common.Created(c, gin.H{
		"attachment": domain.Attachment{
			URL:      url,
			Name:     fileHeader.Filename,
			Size:     fileHeader.Size,
			MimeType: contentType,
		},
		"kind": suggestedKind(contentType),
	})
}

// suggestedKind maps a mime type to the message kind clients should send with
func suggestedKind(contentType string) domain.MessageKind {
	if strings.HasPrefix(contentType, "image/") {
		return domain.KindImage
	}
	return domain.KindFile
}
