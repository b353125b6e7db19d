package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/mailfold/mailfold-backend/internal/models"
	"github.com/mailfold/mailfold-backend/internal/repository"
	"github.com/mailfold/mailfold-backend/internal/services"
)

// MockConversationRepository implements repository.ConversationRepository
type MockConversationRepository struct {
	mock.Mock
}

// Create creates a new conversation
func (m *MockConversationRepository) Create(ctx context.Context, conversation *models.Conversation) error {
	args := m.Called(ctx, conversation)
	return args.Error(0)
}

// GetByID retrieves a conversation by its ID
func (m *MockConversationRepository) GetByID(ctx context.Context, id uint) (*models.Conversation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Conversation), args.Error(1)
}

// Touch bumps the conversation's freshness timestamp
func (m *MockConversationRepository) Touch(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockNotificationRepository implements repository.NotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

// Create creates a new notification
func (m *MockNotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

// CreateWithReceipts persists the notification and its receipts atomically
func (m *MockNotificationRepository) CreateWithReceipts(ctx context.Context, notification *models.Notification, receipts []*models.Receipt) error {
	args := m.Called(ctx, notification, receipts)
	return args.Error(0)
}

// GetByID retrieves a notification by its ID
func (m *MockNotificationRepository) GetByID(ctx context.Context, id uint) (*models.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

// ListByConversation retrieves a conversation's notifications
func (m *MockNotificationRepository) ListByConversation(ctx context.Context, conversationID uint) ([]models.Notification, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Notification), args.Error(1)
}

// MockReceiptRepository implements repository.ReceiptRepository
type MockReceiptRepository struct {
	mock.Mock
}

// GetByID retrieves a receipt by its ID
func (m *MockReceiptRepository) GetByID(ctx context.Context, id uint) (*models.Receipt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Receipt), args.Error(1)
}

// List retrieves receipts matching the filter
func (m *MockReceiptRepository) List(ctx context.Context, filter repository.ReceiptFilter) ([]models.Receipt, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Receipt), args.Error(1)
}

// CountUnread counts unread inbox receipts for a receiver
func (m *MockReceiptRepository) CountUnread(ctx context.Context, receiver models.ParticipantRef) (int64, error) {
	args := m.Called(ctx, receiver)
	return args.Get(0).(int64), args.Error(1)
}

// MarkAsRead marks the receipt as read
func (m *MockReceiptRepository) MarkAsRead(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MarkAsUnread marks the receipt as unread
func (m *MockReceiptRepository) MarkAsUnread(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MoveToTrash trashes the receipt
func (m *MockReceiptRepository) MoveToTrash(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Untrash restores the receipt from trash
func (m *MockReceiptRepository) Untrash(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MoveToInbox moves the receipt to the inbox
func (m *MockReceiptRepository) MoveToInbox(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MoveToSentbox moves the receipt to the sentbox
func (m *MockReceiptRepository) MoveToSentbox(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// BulkUpdate applies updates over the filtered set
func (m *MockReceiptRepository) BulkUpdate(ctx context.Context, updates map[string]interface{}, filter repository.ReceiptFilter) (int64, error) {
	args := m.Called(ctx, updates, filter)
	return args.Get(0).(int64), args.Error(1)
}

// BulkMarkAsRead marks the filtered set as read
func (m *MockReceiptRepository) BulkMarkAsRead(ctx context.Context, filter repository.ReceiptFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// BulkMarkAsUnread marks the filtered set as unread
func (m *MockReceiptRepository) BulkMarkAsUnread(ctx context.Context, filter repository.ReceiptFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// BulkMoveToTrash trashes the filtered set
func (m *MockReceiptRepository) BulkMoveToTrash(ctx context.Context, filter repository.ReceiptFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// BulkUntrash restores the filtered set from trash
func (m *MockReceiptRepository) BulkUntrash(ctx context.Context, filter repository.ReceiptFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// BulkMoveToInbox moves the filtered set to the inbox
func (m *MockReceiptRepository) BulkMoveToInbox(ctx context.Context, filter repository.ReceiptFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// BulkMoveToSentbox moves the filtered set to the sentbox
func (m *MockReceiptRepository) BulkMoveToSentbox(ctx context.Context, filter repository.ReceiptFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockContactRepository implements repository.ContactRepository
type MockContactRepository struct {
	mock.Mock
}

// Create creates a new contact
func (m *MockContactRepository) Create(ctx context.Context, contact *models.Contact) error {
	args := m.Called(ctx, contact)
	return args.Error(0)
}

// GetByID retrieves a contact by its ID
func (m *MockContactRepository) GetByID(ctx context.Context, id uint) (*models.Contact, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contact), args.Error(1)
}

// GetByEmail retrieves a contact by its email address
func (m *MockContactRepository) GetByEmail(ctx context.Context, email string) (*models.Contact, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contact), args.Error(1)
}

// MockDeliveryService implements services.DeliveryService
type MockDeliveryService struct {
	mock.Mock
}

// Deliver validates, persists and fans out the notification
func (m *MockDeliveryService) Deliver(ctx context.Context, n *models.Notification, opts services.DeliveryOptions) (*models.Receipt, error) {
	args := m.Called(ctx, n, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Receipt), args.Error(1)
}

// DeliverReply delivers into an existing conversation
func (m *MockDeliveryService) DeliverReply(ctx context.Context, conversationID uint, sender models.Participant, recipients []models.Participant, body string, shouldClean bool) (*models.Receipt, error) {
	args := m.Called(ctx, conversationID, sender, recipients, body, shouldClean)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Receipt), args.Error(1)
}
