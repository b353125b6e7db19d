package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mailfold/mailfold-backend/internal/models"
	"gorm.io/gorm"
)

// ConversationRepository defines the interface for conversation data access
type ConversationRepository interface {
	Create(ctx context.Context, conversation *models.Conversation) error
	GetByID(ctx context.Context, id uint) (*models.Conversation, error)
	Touch(ctx context.Context, id uint) error
}

// conversationRepository implements ConversationRepository using GORM
type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository creates a new ConversationRepository instance
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

// Create creates a new conversation
func (r *conversationRepository) Create(ctx context.Context, conversation *models.Conversation) error {
	result := r.db.WithContext(ctx).Create(conversation)
	if result.Error != nil {
		return fmt.Errorf("failed to create conversation: %w", result.Error)
	}
	return nil
}

// GetByID retrieves a conversation by its ID
func (r *conversationRepository) GetByID(ctx context.Context, id uint) (*models.Conversation, error) {
	var conversation models.Conversation
	result := r.db.WithContext(ctx).First(&conversation, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get conversation by ID: %w", result.Error)
	}
	return &conversation, nil
}

// Touch bumps the conversation's last_activity_at to now. The write is
// last-writer-wins; the timestamp is a freshness marker, not a clock.
func (r *conversationRepository) Touch(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&models.Conversation{}).Where("id = ?", id).Update("last_activity_at", time.Now())
	if result.Error != nil {
		return fmt.Errorf("failed to touch conversation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
