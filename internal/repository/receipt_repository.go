package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mailfold/mailfold-backend/internal/models"
	"gorm.io/gorm"
)

// ReceiptFilter narrows the receipt set a query or bulk write applies to.
// Conversation and kind filters join through the notifications table; the
// rest match receipt columns directly. Nil fields are ignored.
type ReceiptFilter struct {
	Receiver       *models.ParticipantRef
	NotificationID *uint
	ConversationID *uint
	Kind           *models.NotificationKind
	MailboxType    *string
	IsRead         *bool
	Trashed        *bool
}

// ReceiptRepository defines the interface for receipt data access. The six
// per-receipt transitions are guarded updates: already being in the target
// state is a no-op that leaves updated_at alone. The bulk variants apply the
// same transitions over a filtered set through BulkUpdate.
type ReceiptRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Receipt, error)
	List(ctx context.Context, filter ReceiptFilter) ([]models.Receipt, error)
	CountUnread(ctx context.Context, receiver models.ParticipantRef) (int64, error)

	MarkAsRead(ctx context.Context, id uint) error
	MarkAsUnread(ctx context.Context, id uint) error
	MoveToTrash(ctx context.Context, id uint) error
	Untrash(ctx context.Context, id uint) error
	MoveToInbox(ctx context.Context, id uint) error
	MoveToSentbox(ctx context.Context, id uint) error

	BulkUpdate(ctx context.Context, updates map[string]interface{}, filter ReceiptFilter) (int64, error)
	BulkMarkAsRead(ctx context.Context, filter ReceiptFilter) (int64, error)
	BulkMarkAsUnread(ctx context.Context, filter ReceiptFilter) (int64, error)
	BulkMoveToTrash(ctx context.Context, filter ReceiptFilter) (int64, error)
	BulkUntrash(ctx context.Context, filter ReceiptFilter) (int64, error)
	BulkMoveToInbox(ctx context.Context, filter ReceiptFilter) (int64, error)
	BulkMoveToSentbox(ctx context.Context, filter ReceiptFilter) (int64, error)
}

// receiptRepository implements ReceiptRepository using GORM
type receiptRepository struct {
	db *gorm.DB
}

// NewReceiptRepository creates a new ReceiptRepository instance
func NewReceiptRepository(db *gorm.DB) ReceiptRepository {
	return &receiptRepository{db: db}
}

// GetByID retrieves a receipt with its notification and conversation
func (r *receiptRepository) GetByID(ctx context.Context, id uint) (*models.Receipt, error) {
	var receipt models.Receipt
	result := r.db.WithContext(ctx).Preload("Notification").Preload("Notification.Conversation").First(&receipt, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get receipt by ID: %w", result.Error)
	}
	return &receipt, nil
}

// List retrieves the receipts matching the filter, oldest first
func (r *receiptRepository) List(ctx context.Context, filter ReceiptFilter) ([]models.Receipt, error) {
	var receipts []models.Receipt
	result := r.applyFilter(r.db.WithContext(ctx), filter).
		Preload("Notification").
		Preload("Notification.Conversation").
		Order("receipts.created_at ASC").
		Find(&receipts)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", result.Error)
	}
	return receipts, nil
}

// CountUnread counts unread, untrashed inbox receipts for a receiver
func (r *receiptRepository) CountUnread(ctx context.Context, receiver models.ParticipantRef) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Receipt{}).
		Where("receiver_type = ? AND receiver_id = ?", receiver.Type, receiver.ID).
		Where("mailbox_type = ? AND is_read = ? AND trashed = ?", models.MailboxInbox, false, false).
		Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count unread receipts: %w", result.Error)
	}
	return count, nil
}

// applyFilter builds the filtered read query. Joins are only added when a
// notification-side filter asks for them, so the plain cases stay a single
// table scan.
func (r *receiptRepository) applyFilter(db *gorm.DB, filter ReceiptFilter) *gorm.DB {
	query := db.Model(&models.Receipt{})

	if filter.ConversationID != nil || filter.Kind != nil {
		query = query.Joins("JOIN notifications ON notifications.id = receipts.notification_id")
		if filter.ConversationID != nil {
			query = query.Where("notifications.conversation_id = ?", *filter.ConversationID)
		}
		if filter.Kind != nil {
			query = query.Where("notifications.kind = ?", *filter.Kind)
		}
	}
	if filter.Receiver != nil {
		query = query.Where("receipts.receiver_type = ? AND receipts.receiver_id = ?", filter.Receiver.Type, filter.Receiver.ID)
	}
	if filter.NotificationID != nil {
		query = query.Where("receipts.notification_id = ?", *filter.NotificationID)
	}
	if filter.MailboxType != nil {
		query = query.Where("receipts.mailbox_type = ?", *filter.MailboxType)
	}
	if filter.IsRead != nil {
		query = query.Where("receipts.is_read = ?", *filter.IsRead)
	}
	if filter.Trashed != nil {
		query = query.Where("receipts.trashed = ?", *filter.Trashed)
	}

	return query
}

// BulkUpdate applies the updates to every receipt matching the filter. The
// write is split in two phases: the filtered set is resolved to concrete ids
// first, then the mass write runs keyed by those ids alone, with joins and
// filters dropped. The write must not re-evaluate the filter (it could race
// against the very update being applied) and must not depend on join
// availability. An empty id set skips the write entirely.
//
// The owning conversation is touched exactly once per call, before the
// write. A second bulk call racing between our id resolution and write may
// apply stale membership; that is accepted last-write-wins semantics on
// state flags, not a serializable operation.
func (r *receiptRepository) BulkUpdate(ctx context.Context, updates map[string]interface{}, filter ReceiptFilter) (int64, error) {
	if err := r.touchOwningConversation(ctx, filter); err != nil {
		return 0, err
	}

	var ids []uint
	if err := r.applyFilter(r.db.WithContext(ctx), filter).Pluck("receipts.id", &ids).Error; err != nil {
		return 0, fmt.Errorf("failed to resolve receipt ids: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).Model(&models.Receipt{}).Where("id IN ?", ids).Updates(updates)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to bulk update receipts: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// touchOwningConversation bumps last_activity_at on the conversation the
// filter targets. When the filter is keyed by notification instead, the
// conversation is resolved through it; notification variants without a
// conversation leave nothing to touch.
func (r *receiptRepository) touchOwningConversation(ctx context.Context, filter ReceiptFilter) error {
	conversationID := filter.ConversationID
	if conversationID == nil && filter.NotificationID != nil {
		var notification models.Notification
		err := r.db.WithContext(ctx).Select("conversation_id").First(&notification, *filter.NotificationID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("failed to resolve owning conversation: %w", err)
		}
		conversationID = notification.ConversationID
	}
	if conversationID == nil {
		return nil
	}

	result := r.db.WithContext(ctx).Model(&models.Conversation{}).
		Where("id = ?", *conversationID).
		Update("last_activity_at", time.Now())
	if result.Error != nil {
		return fmt.Errorf("failed to touch conversation: %w", result.Error)
	}
	return nil
}

// ==================== Bulk transitions ====================

// BulkMarkAsRead marks every unread receipt in the filtered set as read
func (r *receiptRepository) BulkMarkAsRead(ctx context.Context, filter ReceiptFilter) (int64, error) {
	unread := false
	filter.IsRead = &unread
	return r.BulkUpdate(ctx, map[string]interface{}{"is_read": true, "updated_at": time.Now()}, filter)
}

// BulkMarkAsUnread marks every read receipt in the filtered set as unread
func (r *receiptRepository) BulkMarkAsUnread(ctx context.Context, filter ReceiptFilter) (int64, error) {
	read := true
	filter.IsRead = &read
	return r.BulkUpdate(ctx, map[string]interface{}{"is_read": false, "updated_at": time.Now()}, filter)
}

// BulkMoveToTrash trashes every active receipt in the filtered set
func (r *receiptRepository) BulkMoveToTrash(ctx context.Context, filter ReceiptFilter) (int64, error) {
	active := false
	filter.Trashed = &active
	return r.BulkUpdate(ctx, map[string]interface{}{"trashed": true, "updated_at": time.Now()}, filter)
}

// BulkUntrash restores every trashed receipt in the filtered set
func (r *receiptRepository) BulkUntrash(ctx context.Context, filter ReceiptFilter) (int64, error) {
	trashed := true
	filter.Trashed = &trashed
	return r.BulkUpdate(ctx, map[string]interface{}{"trashed": false, "updated_at": time.Now()}, filter)
}

// BulkMoveToInbox moves sentbox receipts in the filtered set to the inbox.
// Moving mailbox also restores the receipt from trash.
func (r *receiptRepository) BulkMoveToInbox(ctx context.Context, filter ReceiptFilter) (int64, error) {
	sentbox := models.MailboxSentbox
	filter.MailboxType = &sentbox
	return r.BulkUpdate(ctx, map[string]interface{}{"mailbox_type": models.MailboxInbox, "trashed": false, "updated_at": time.Now()}, filter)
}

// BulkMoveToSentbox moves inbox receipts in the filtered set to the sentbox.
// Moving mailbox also restores the receipt from trash.
func (r *receiptRepository) BulkMoveToSentbox(ctx context.Context, filter ReceiptFilter) (int64, error) {
	inbox := models.MailboxInbox
	filter.MailboxType = &inbox
	return r.BulkUpdate(ctx, map[string]interface{}{"mailbox_type": models.MailboxSentbox, "trashed": false, "updated_at": time.Now()}, filter)
}

// ==================== Per-receipt transitions ====================

// transition applies a guarded single-receipt update. When the guard does
// not match the receipt is already in the target state and the update is
// skipped without bumping updated_at.
func (r *receiptRepository) transition(ctx context.Context, id uint, updates map[string]interface{}, guard string, guardArgs ...interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Receipt{}).
		Where("id = ?", id).
		Where(guard, guardArgs...).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update receipt: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.Receipt{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check receipt existence: %w", err)
		}
		if count == 0 {
			return ErrNotFound
		}
	}
	return nil
}

// MarkAsRead marks the receipt as read; no-op when already read
func (r *receiptRepository) MarkAsRead(ctx context.Context, id uint) error {
	return r.transition(ctx, id, map[string]interface{}{"is_read": true, "updated_at": time.Now()}, "is_read = ?", false)
}

// MarkAsUnread marks the receipt as unread; no-op when already unread
func (r *receiptRepository) MarkAsUnread(ctx context.Context, id uint) error {
	return r.transition(ctx, id, map[string]interface{}{"is_read": false, "updated_at": time.Now()}, "is_read = ?", true)
}

// MoveToTrash trashes the receipt; no-op when already trashed
func (r *receiptRepository) MoveToTrash(ctx context.Context, id uint) error {
	return r.transition(ctx, id, map[string]interface{}{"trashed": true, "updated_at": time.Now()}, "trashed = ?", false)
}

// Untrash restores the receipt from trash; no-op when already active
func (r *receiptRepository) Untrash(ctx context.Context, id uint) error {
	return r.transition(ctx, id, map[string]interface{}{"trashed": false, "updated_at": time.Now()}, "trashed = ?", true)
}

// MoveToInbox moves the receipt to the inbox and restores it from trash;
// no-op when already in the inbox, even if trashed
func (r *receiptRepository) MoveToInbox(ctx context.Context, id uint) error {
	return r.transition(ctx, id,
		map[string]interface{}{"mailbox_type": models.MailboxInbox, "trashed": false, "updated_at": time.Now()},
		"mailbox_type <> ?", models.MailboxInbox)
}

// MoveToSentbox moves the receipt to the sentbox and restores it from trash;
// no-op when already in the sentbox, even if trashed
func (r *receiptRepository) MoveToSentbox(ctx context.Context, id uint) error {
	return r.transition(ctx, id,
		map[string]interface{}{"mailbox_type": models.MailboxSentbox, "trashed": false, "updated_at": time.Now()},
		"mailbox_type <> ?", models.MailboxSentbox)
}
