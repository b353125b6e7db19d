package handlers

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mailfold/mailfold-backend/internal/api/response"
	"github.com/mailfold/mailfold-backend/internal/models"
	"github.com/mailfold/mailfold-backend/internal/repository"
	"github.com/mailfold/mailfold-backend/internal/storage"
)

// AttachmentHandler handles attachment-related HTTP requests
type AttachmentHandler struct {
	attachmentRepo   repository.AttachmentRepository
	notificationRepo repository.NotificationRepository
	blobs            storage.AttachmentStore
}

// NewAttachmentHandler creates a new AttachmentHandler
func NewAttachmentHandler(
	attachmentRepo repository.AttachmentRepository,
	notificationRepo repository.NotificationRepository,
	blobs storage.AttachmentStore,
) *AttachmentHandler {
	return &AttachmentHandler{
		attachmentRepo:   attachmentRepo,
		notificationRepo: notificationRepo,
		blobs:            blobs,
	}
}

// Upload handles POST /api/notifications/:notification_id/attachments
func (h *AttachmentHandler) Upload(c echo.Context) error {
	notificationID, err := strconv.ParseUint(c.Param("notification_id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid notification ID")
	}

	// Verify notification exists
	_, err = h.notificationRepo.GetByID(c.Request().Context(), uint(notificationID))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "notification not found")
		}
		return response.InternalError(c, "failed to get notification")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "file is required")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return response.InternalError(c, "failed to read uploaded file")
	}
	defer src.Close()

	ref, size, err := h.blobs.Store(uint(notificationID), fileHeader.Filename, src)
	if err != nil {
		if errors.Is(err, storage.ErrBlobTooLarge) {
			return response.BadRequest(c, "attachment exceeds size limit")
		}
		return response.InternalError(c, "failed to store attachment")
	}

	attachment := &models.Attachment{
		NotificationID: uint(notificationID),
		Filename:       fileHeader.Filename,
		ContentType:    fileHeader.Header.Get("Content-Type"),
		FilePath:       ref,
		SizeBytes:      size,
	}
	if err := h.attachmentRepo.Create(c.Request().Context(), attachment); err != nil {
		_ = h.blobs.Remove(ref)
		return response.InternalError(c, "failed to create attachment")
	}

	return response.Created(c, attachment)
}

// List handles GET /api/notifications/:notification_id/attachments
func (h *AttachmentHandler) List(c echo.Context) error {
	notificationID, err := strconv.ParseUint(c.Param("notification_id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid notification ID")
	}

	// Verify notification exists
	_, err = h.notificationRepo.GetByID(c.Request().Context(), uint(notificationID))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "notification not found")
		}
		return response.InternalError(c, "failed to get notification")
	}

	attachments, err := h.attachmentRepo.ListByNotification(c.Request().Context(), uint(notificationID))
	if err != nil {
		return response.InternalError(c, "failed to list attachments")
	}

	return response.Success(c, attachments)
}

// Get handles GET /api/attachments/:id
func (h *AttachmentHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid attachment ID")
	}

	attachment, err := h.attachmentRepo.GetByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "attachment not found")
		}
		return response.InternalError(c, "failed to get attachment")
	}

	return response.Success(c, attachment)
}

// Download handles GET /api/attachments/:id/download
func (h *AttachmentHandler) Download(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid attachment ID")
	}

	attachment, err := h.attachmentRepo.GetByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "attachment not found")
		}
		return response.InternalError(c, "failed to get attachment")
	}

	blob, err := h.blobs.Retrieve(attachment.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			return response.NotFound(c, "attachment content not found")
		}
		return response.InternalError(c, "failed to retrieve attachment")
	}
	defer blob.Close()

	// Set headers for download
	c.Response().Header().Set("Content-Type", attachment.ContentType)
	c.Response().Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, attachment.Filename))
	if attachment.SizeBytes > 0 {
		c.Response().Header().Set("Content-Length", strconv.FormatInt(attachment.SizeBytes, 10))
	}

	// Stream blob to response
	_, err = io.Copy(c.Response().Writer, blob)
	if err != nil {
		return response.InternalError(c, "failed to send attachment")
	}

	return nil
}

// Delete handles DELETE /api/attachments/:id
func (h *AttachmentHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid attachment ID")
	}

	if err := h.attachmentRepo.Delete(c.Request().Context(), uint(id)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "attachment not found")
		}
		return response.InternalError(c, "failed to delete attachment")
	}

	return response.NoContent(c)
}
