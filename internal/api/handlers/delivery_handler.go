package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mailfold/mailfold-backend/internal/api/response"
	"github.com/mailfold/mailfold-backend/internal/models"
	"github.com/mailfold/mailfold-backend/internal/repository"
	"github.com/mailfold/mailfold-backend/internal/services"
)

// DeliveryHandler handles delivery-related HTTP requests
type DeliveryHandler struct {
	deliveries services.DeliveryService
	registry   *models.ParticipantRegistry
}

// NewDeliveryHandler creates a new DeliveryHandler
func NewDeliveryHandler(deliveries services.DeliveryService, registry *models.ParticipantRegistry) *DeliveryHandler {
	return &DeliveryHandler{
		deliveries: deliveries,
		registry:   registry,
	}
}

// DeliverRequest is the payload for a new delivery
type DeliverRequest struct {
	Kind       string                  `json:"kind"`
	Sender     models.ParticipantRef   `json:"sender"`
	Recipients []models.ParticipantRef `json:"recipients"`
	Subject    string                  `json:"subject"`
	Body       string                  `json:"body"`
	Clean      bool                    `json:"clean"`
}

// ReplyRequest is the payload for a reply into an existing conversation
type ReplyRequest struct {
	Sender     models.ParticipantRef   `json:"sender"`
	Recipients []models.ParticipantRef `json:"recipients"`
	Body       string                  `json:"body"`
	Clean      bool                    `json:"clean"`
}

// DeliveryResponse pairs the sender receipt with the persisted notification
// so the caller can address follow-up replies at its conversation.
type DeliveryResponse struct {
	Receipt      *models.Receipt      `json:"receipt"`
	Notification *models.Notification `json:"notification"`
}

// Deliver handles POST /api/deliveries
func (h *DeliveryHandler) Deliver(c echo.Context) error {
	var req DeliverRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.Sender.IsZero() {
		return response.BadRequest(c, "sender is required")
	}

	ctx := c.Request().Context()
	sender, err := h.registry.Resolve(ctx, req.Sender)
	if err != nil {
		return h.participantError(c, "sender", err)
	}
	recipients, err := h.resolveRecipients(ctx, req.Recipients)
	if err != nil {
		return h.participantError(c, "recipient", err)
	}

	var n *models.Notification
	switch req.Kind {
	case "", string(models.KindMessage):
		conversation := &models.Conversation{Subject: req.Subject}
		n = models.NewMessage(sender, conversation, req.Subject, req.Body, recipients...)
	case string(models.KindNotice):
		n = models.NewNotice(sender, req.Subject, req.Body, recipients...)
	default:
		return response.BadRequest(c, "kind must be one of: message, notice")
	}

	receipt, err := h.deliveries.Deliver(ctx, n, services.DeliveryOptions{ShouldClean: req.Clean})
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			return response.ValidationFailed(c, verr)
		}
		return response.InternalError(c, "failed to deliver notification")
	}

	return response.Created(c, DeliveryResponse{Receipt: receipt, Notification: &receipt.Notification})
}

// Reply handles POST /api/conversations/:id/replies
func (h *DeliveryHandler) Reply(c echo.Context) error {
	conversationID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid conversation ID")
	}

	var req ReplyRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.Sender.IsZero() {
		return response.BadRequest(c, "sender is required")
	}

	ctx := c.Request().Context()
	sender, err := h.registry.Resolve(ctx, req.Sender)
	if err != nil {
		return h.participantError(c, "sender", err)
	}
	recipients, err := h.resolveRecipients(ctx, req.Recipients)
	if err != nil {
		return h.participantError(c, "recipient", err)
	}

	receipt, err := h.deliveries.DeliverReply(ctx, uint(conversationID), sender, recipients, req.Body, req.Clean)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			return response.ValidationFailed(c, verr)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "conversation not found")
		}
		return response.InternalError(c, "failed to deliver reply")
	}

	return response.Created(c, DeliveryResponse{Receipt: receipt, Notification: &receipt.Notification})
}

// resolveRecipients loads every recipient reference through the registry
func (h *DeliveryHandler) resolveRecipients(ctx context.Context, refs []models.ParticipantRef) ([]models.Participant, error) {
	recipients := make([]models.Participant, 0, len(refs))
	for _, ref := range refs {
		p, err := h.registry.Resolve(ctx, ref)
		if err != nil {
			return nil, err
		}
		recipients = append(recipients, p)
	}
	return recipients, nil
}

// participantError maps a resolution failure to the right response
func (h *DeliveryHandler) participantError(c echo.Context, role string, err error) error {
	if errors.Is(err, models.ErrUnknownParticipantType) {
		return response.BadRequest(c, "unknown "+role+" type")
	}
	if errors.Is(err, repository.ErrNotFound) {
		return response.NotFound(c, role+" not found")
	}
	return response.InternalError(c, "failed to resolve "+role)
}
