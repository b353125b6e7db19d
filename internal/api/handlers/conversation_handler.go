package handlers

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mailfold/mailfold-backend/internal/api/response"
	"github.com/mailfold/mailfold-backend/internal/repository"
)

// ConversationHandler handles conversation-related HTTP requests
type ConversationHandler struct {
	conversationRepo repository.ConversationRepository
	notificationRepo repository.NotificationRepository
}

// NewConversationHandler creates a new ConversationHandler
func NewConversationHandler(conversationRepo repository.ConversationRepository, notificationRepo repository.NotificationRepository) *ConversationHandler {
	return &ConversationHandler{
		conversationRepo: conversationRepo,
		notificationRepo: notificationRepo,
	}
}

// Get handles GET /api/conversations/:id
func (h *ConversationHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid conversation ID")
	}

	conversation, err := h.conversationRepo.GetByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "conversation not found")
		}
		return response.InternalError(c, "failed to get conversation")
	}

	return response.Success(c, conversation)
}

// ListNotifications handles GET /api/conversations/:id/notifications
func (h *ConversationHandler) ListNotifications(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid conversation ID")
	}

	// Verify conversation exists
	_, err = h.conversationRepo.GetByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "conversation not found")
		}
		return response.InternalError(c, "failed to get conversation")
	}

	notifications, err := h.notificationRepo.ListByConversation(c.Request().Context(), uint(id))
	if err != nil {
		return response.InternalError(c, "failed to list notifications")
	}

	return response.Success(c, notifications)
}
