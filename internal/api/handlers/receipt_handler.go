package handlers

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mailfold/mailfold-backend/internal/api/response"
	"github.com/mailfold/mailfold-backend/internal/models"
	"github.com/mailfold/mailfold-backend/internal/repository"
)

// ReceiptHandler handles receipt-related HTTP requests
type ReceiptHandler struct {
	receiptRepo repository.ReceiptRepository
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(receiptRepo repository.ReceiptRepository) *ReceiptHandler {
	return &ReceiptHandler{receiptRepo: receiptRepo}
}

// ReceiptFilterRequest is the JSON shape of a bulk operation's filter
type ReceiptFilterRequest struct {
	ReceiverType   string  `json:"receiver_type"`
	ReceiverID     uint    `json:"receiver_id"`
	NotificationID *uint   `json:"notification_id"`
	ConversationID *uint   `json:"conversation_id"`
	Kind           *string `json:"kind"`
	MailboxType    *string `json:"mailbox_type"`
	IsRead         *bool   `json:"is_read"`
	Trashed        *bool   `json:"trashed"`
}

// toFilter converts the request payload to a repository filter
func (r *ReceiptFilterRequest) toFilter() repository.ReceiptFilter {
	filter := repository.ReceiptFilter{
		NotificationID: r.NotificationID,
		ConversationID: r.ConversationID,
		MailboxType:    r.MailboxType,
		IsRead:         r.IsRead,
		Trashed:        r.Trashed,
	}
	if r.ReceiverType != "" && r.ReceiverID != 0 {
		filter.Receiver = &models.ParticipantRef{Type: r.ReceiverType, ID: r.ReceiverID}
	}
	if r.Kind != nil {
		kind := models.NotificationKind(*r.Kind)
		filter.Kind = &kind
	}
	return filter
}

// List handles GET /api/receipts
func (h *ReceiptHandler) List(c echo.Context) error {
	filter, err := filterFromQuery(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	receipts, err := h.receiptRepo.List(c.Request().Context(), filter)
	if err != nil {
		return response.InternalError(c, "failed to list receipts")
	}

	return response.Success(c, receipts)
}

// Get handles GET /api/receipts/:id
func (h *ReceiptHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid receipt ID")
	}

	receipt, err := h.receiptRepo.GetByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "receipt not found")
		}
		return response.InternalError(c, "failed to get receipt")
	}

	return response.Success(c, receipt)
}

// UnreadCount handles GET /api/receipts/unread_count
func (h *ReceiptHandler) UnreadCount(c echo.Context) error {
	receiver, err := receiverFromQuery(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	count, err := h.receiptRepo.CountUnread(c.Request().Context(), receiver)
	if err != nil {
		return response.InternalError(c, "failed to count unread receipts")
	}

	return response.Success(c, map[string]int64{"unread": count})
}

// transition applies one per-receipt state change
func (h *ReceiptHandler) transition(c echo.Context, apply func(uint) error, message string) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid receipt ID")
	}

	if err := apply(uint(id)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "receipt not found")
		}
		return response.InternalError(c, "failed to update receipt")
	}

	return response.SuccessWithMessage(c, nil, message)
}

// MarkAsRead handles PATCH /api/receipts/:id/read
func (h *ReceiptHandler) MarkAsRead(c echo.Context) error {
	ctx := c.Request().Context()
	return h.transition(c, func(id uint) error { return h.receiptRepo.MarkAsRead(ctx, id) }, "receipt marked as read")
}

// MarkAsUnread handles PATCH /api/receipts/:id/unread
func (h *ReceiptHandler) MarkAsUnread(c echo.Context) error {
	ctx := c.Request().Context()
	return h.transition(c, func(id uint) error { return h.receiptRepo.MarkAsUnread(ctx, id) }, "receipt marked as unread")
}

// MoveToTrash handles PATCH /api/receipts/:id/trash
func (h *ReceiptHandler) MoveToTrash(c echo.Context) error {
	ctx := c.Request().Context()
	return h.transition(c, func(id uint) error { return h.receiptRepo.MoveToTrash(ctx, id) }, "receipt moved to trash")
}

// Untrash handles PATCH /api/receipts/:id/untrash
func (h *ReceiptHandler) Untrash(c echo.Context) error {
	ctx := c.Request().Context()
	return h.transition(c, func(id uint) error { return h.receiptRepo.Untrash(ctx, id) }, "receipt restored from trash")
}

// MoveToInbox handles PATCH /api/receipts/:id/inbox
func (h *ReceiptHandler) MoveToInbox(c echo.Context) error {
	ctx := c.Request().Context()
	return h.transition(c, func(id uint) error { return h.receiptRepo.MoveToInbox(ctx, id) }, "receipt moved to inbox")
}

// MoveToSentbox handles PATCH /api/receipts/:id/sentbox
func (h *ReceiptHandler) MoveToSentbox(c echo.Context) error {
	ctx := c.Request().Context()
	return h.transition(c, func(id uint) error { return h.receiptRepo.MoveToSentbox(ctx, id) }, "receipt moved to sentbox")
}

// bulk applies one bulk state change over a request-supplied filter
func (h *ReceiptHandler) bulk(c echo.Context, apply func(repository.ReceiptFilter) (int64, error)) error {
	var req ReceiptFilterRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	affected, err := apply(req.toFilter())
	if err != nil {
		return response.InternalError(c, "failed to bulk update receipts")
	}

	return response.Success(c, map[string]int64{"affected": affected})
}

// BulkMarkAsRead handles POST /api/receipts/bulk/read
func (h *ReceiptHandler) BulkMarkAsRead(c echo.Context) error {
	ctx := c.Request().Context()
	return h.bulk(c, func(f repository.ReceiptFilter) (int64, error) { return h.receiptRepo.BulkMarkAsRead(ctx, f) })
}

// BulkMarkAsUnread handles POST /api/receipts/bulk/unread
func (h *ReceiptHandler) BulkMarkAsUnread(c echo.Context) error {
	ctx := c.Request().Context()
	return h.bulk(c, func(f repository.ReceiptFilter) (int64, error) { return h.receiptRepo.BulkMarkAsUnread(ctx, f) })
}

// BulkMoveToTrash handles POST /api/receipts/bulk/trash
func (h *ReceiptHandler) BulkMoveToTrash(c echo.Context) error {
	ctx := c.Request().Context()
	return h.bulk(c, func(f repository.ReceiptFilter) (int64, error) { return h.receiptRepo.BulkMoveToTrash(ctx, f) })
}

// BulkUntrash handles POST /api/receipts/bulk/untrash
func (h *ReceiptHandler) BulkUntrash(c echo.Context) error {
	ctx := c.Request().Context()
	return h.bulk(c, func(f repository.ReceiptFilter) (int64, error) { return h.receiptRepo.BulkUntrash(ctx, f) })
}

// BulkMoveToInbox handles POST /api/receipts/bulk/inbox
func (h *ReceiptHandler) BulkMoveToInbox(c echo.Context) error {
	ctx := c.Request().Context()
	return h.bulk(c, func(f repository.ReceiptFilter) (int64, error) { return h.receiptRepo.BulkMoveToInbox(ctx, f) })
}

// BulkMoveToSentbox handles POST /api/receipts/bulk/sentbox
func (h *ReceiptHandler) BulkMoveToSentbox(c echo.Context) error {
	ctx := c.Request().Context()
	return h.bulk(c, func(f repository.ReceiptFilter) (int64, error) { return h.receiptRepo.BulkMoveToSentbox(ctx, f) })
}

// receiverFromQuery parses the required receiver_type/receiver_id pair
func receiverFromQuery(c echo.Context) (models.ParticipantRef, error) {
	receiverType := c.QueryParam("receiver_type")
	receiverID := c.QueryParam("receiver_id")
	if receiverType == "" || receiverID == "" {
		return models.ParticipantRef{}, errors.New("receiver_type and receiver_id are required")
	}
	id, err := strconv.ParseUint(receiverID, 10, 32)
	if err != nil {
		return models.ParticipantRef{}, errors.New("receiver_id must be an integer")
	}
	return models.ParticipantRef{Type: receiverType, ID: uint(id)}, nil
}

// filterFromQuery builds a receipt filter from list query parameters
func filterFromQuery(c echo.Context) (repository.ReceiptFilter, error) {
	var filter repository.ReceiptFilter

	if c.QueryParam("receiver_type") != "" || c.QueryParam("receiver_id") != "" {
		receiver, err := receiverFromQuery(c)
		if err != nil {
			return filter, err
		}
		filter.Receiver = &receiver
	}
	if raw := c.QueryParam("notification_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return filter, errors.New("notification_id must be an integer")
		}
		v := uint(id)
		filter.NotificationID = &v
	}
	if raw := c.QueryParam("conversation_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return filter, errors.New("conversation_id must be an integer")
		}
		v := uint(id)
		filter.ConversationID = &v
	}
	if raw := c.QueryParam("kind"); raw != "" {
		kind := models.NotificationKind(raw)
		filter.Kind = &kind
	}
	if raw := c.QueryParam("mailbox_type"); raw != "" {
		if raw != models.MailboxInbox && raw != models.MailboxSentbox {
			return filter, errors.New("mailbox_type must be one of: inbox, sentbox")
		}
		mailbox := raw
		filter.MailboxType = &mailbox
	}
	if raw := c.QueryParam("is_read"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, errors.New("is_read must be a boolean")
		}
		filter.IsRead = &v
	}
	if raw := c.QueryParam("trashed"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, errors.New("trashed must be a boolean")
		}
		filter.Trashed = &v
	}

	return filter, nil
}
