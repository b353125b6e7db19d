package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/mailfold/mailfold-backend/internal/models"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	CreateWithReceipts(ctx context.Context, notification *models.Notification, receipts []*models.Receipt) error
	GetByID(ctx context.Context, id uint) (*models.Notification, error)
	ListByConversation(ctx context.Context, conversationID uint) ([]models.Notification, error)
}

// notificationRepository implements NotificationRepository using GORM
type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository instance
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// Create creates a new notification
func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	result := r.db.WithContext(ctx).Omit("Conversation", "Attachments").Create(notification)
	if result.Error != nil {
		return fmt.Errorf("failed to create notification: %w", result.Error)
	}
	return nil
}

// CreateWithReceipts persists the notification and its receipt batch in one
// transaction. A new conversation attached to the notification is saved
// first so the foreign key is in place. Either everything exists afterwards
// or nothing does.
func (r *notificationRepository) CreateWithReceipts(ctx context.Context, notification *models.Notification, receipts []*models.Receipt) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if notification.Conversation != nil && notification.ConversationID == nil {
			if err := tx.Create(notification.Conversation).Error; err != nil {
				return fmt.Errorf("failed to create conversation: %w", err)
			}
			id := notification.Conversation.ID
			notification.ConversationID = &id
		}

		if notification.ID == 0 {
			if err := tx.Omit("Conversation", "Attachments").Create(notification).Error; err != nil {
				return fmt.Errorf("failed to create notification: %w", err)
			}
		}

		for _, receipt := range receipts {
			receipt.NotificationID = notification.ID
			if err := tx.Omit("Notification").Create(receipt).Error; err != nil {
				return fmt.Errorf("failed to create receipt: %w", err)
			}
		}

		return nil
	})
}

// GetByID retrieves a notification with its conversation and attachments
func (r *notificationRepository) GetByID(ctx context.Context, id uint) (*models.Notification, error) {
	var notification models.Notification
	result := r.db.WithContext(ctx).Preload("Conversation").Preload("Attachments").First(&notification, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get notification by ID: %w", result.Error)
	}
	return &notification, nil
}

// ListByConversation retrieves a conversation's notifications in insertion order
func (r *notificationRepository) ListByConversation(ctx context.Context, conversationID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	result := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&notifications)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", result.Error)
	}
	return notifications, nil
}
