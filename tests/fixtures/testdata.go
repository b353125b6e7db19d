package fixtures

import (
	"time"

	"github.com/mailfold/mailfold-backend/internal/models"
)

// ContactBuilder creates test Contact instances with fluent API
type ContactBuilder struct {
	contact models.Contact
}

// NewContactBuilder creates a new ContactBuilder with sensible defaults
func NewContactBuilder() *ContactBuilder {
	now := time.Now()
	return &ContactBuilder{
		contact: models.Contact{
			ID:        1,
			Name:      "Alice",
			Email:     "alice@example.com",
			CreatedAt: now,
		},
	}
}

// WithID sets the contact ID
func (b *ContactBuilder) WithID(id uint) *ContactBuilder {
	b.contact.ID = id
	return b
}

// WithName sets the contact name
func (b *ContactBuilder) WithName(name string) *ContactBuilder {
	b.contact.Name = name
	return b
}

// WithEmail sets the contact email
func (b *ContactBuilder) WithEmail(email string) *ContactBuilder {
	b.contact.Email = email
	return b
}

// Build returns the constructed Contact
func (b *ContactBuilder) Build() *models.Contact {
	return &b.contact
}

// ConversationBuilder creates test Conversation instances with fluent API
type ConversationBuilder struct {
	conversation models.Conversation
}

// NewConversationBuilder creates a new ConversationBuilder with sensible defaults
func NewConversationBuilder() *ConversationBuilder {
	now := time.Now()
	return &ConversationBuilder{
		conversation: models.Conversation{
			ID:             1,
			Subject:        "Test conversation",
			CreatedAt:      now,
			LastActivityAt: now,
		},
	}
}

// WithID sets the conversation ID
func (b *ConversationBuilder) WithID(id uint) *ConversationBuilder {
	b.conversation.ID = id
	return b
}

// WithSubject sets the conversation subject
func (b *ConversationBuilder) WithSubject(subject string) *ConversationBuilder {
	b.conversation.Subject = subject
	return b
}

// WithLastActivityAt sets the freshness timestamp
func (b *ConversationBuilder) WithLastActivityAt(t time.Time) *ConversationBuilder {
	b.conversation.LastActivityAt = t
	return b
}

// Build returns the constructed Conversation
func (b *ConversationBuilder) Build() *models.Conversation {
	return &b.conversation
}

// NotificationBuilder creates test Notification instances with fluent API
type NotificationBuilder struct {
	notification models.Notification
}

// NewNotificationBuilder creates a new NotificationBuilder with sensible defaults
func NewNotificationBuilder() *NotificationBuilder {
	now := time.Now()
	return &NotificationBuilder{
		notification: models.Notification{
			ID:         1,
			Kind:       models.KindMessage,
			SenderType: models.ParticipantTypeContact,
			SenderID:   1,
			Subject:    "Test subject",
			Body:       "Test body",
			CreatedAt:  now,
			UpdatedAt:  now,
		},
	}
}

// WithID sets the notification ID
func (b *NotificationBuilder) WithID(id uint) *NotificationBuilder {
	b.notification.ID = id
	return b
}

// WithKind sets the notification kind
func (b *NotificationBuilder) WithKind(kind models.NotificationKind) *NotificationBuilder {
	b.notification.Kind = kind
	return b
}

// WithSender sets the sender reference
func (b *NotificationBuilder) WithSender(ref models.ParticipantRef) *NotificationBuilder {
	b.notification.SenderType = ref.Type
	b.notification.SenderID = ref.ID
	return b
}

// WithSubject sets the subject
func (b *NotificationBuilder) WithSubject(subject string) *NotificationBuilder {
	b.notification.Subject = subject
	return b
}

// WithBody sets the body
func (b *NotificationBuilder) WithBody(body string) *NotificationBuilder {
	b.notification.Body = body
	return b
}

// WithConversationID links the notification to a conversation
func (b *NotificationBuilder) WithConversationID(id uint) *NotificationBuilder {
	b.notification.ConversationID = &id
	return b
}

// Build returns the constructed Notification
func (b *NotificationBuilder) Build() *models.Notification {
	return &b.notification
}

// ReceiptBuilder creates test Receipt instances with fluent API
type ReceiptBuilder struct {
	receipt models.Receipt
}

// NewReceiptBuilder creates a new ReceiptBuilder with sensible defaults
func NewReceiptBuilder() *ReceiptBuilder {
	now := time.Now()
	return &ReceiptBuilder{
		receipt: models.Receipt{
			ID:             1,
			NotificationID: 1,
			ReceiverType:   models.ParticipantTypeContact,
			ReceiverID:     2,
			MailboxType:    models.MailboxInbox,
			IsRead:         false,
			Trashed:        false,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
	}
}

// WithID sets the receipt ID
func (b *ReceiptBuilder) WithID(id uint) *ReceiptBuilder {
	b.receipt.ID = id
	return b
}

// WithNotificationID sets the owning notification
func (b *ReceiptBuilder) WithNotificationID(id uint) *ReceiptBuilder {
	b.receipt.NotificationID = id
	return b
}

// WithReceiver sets the receiver reference
func (b *ReceiptBuilder) WithReceiver(ref models.ParticipantRef) *ReceiptBuilder {
	b.receipt.ReceiverType = ref.Type
	b.receipt.ReceiverID = ref.ID
	return b
}

// WithMailbox sets the mailbox type
func (b *ReceiptBuilder) WithMailbox(mailbox string) *ReceiptBuilder {
	b.receipt.MailboxType = mailbox
	return b
}

// WithRead sets the read flag
func (b *ReceiptBuilder) WithRead(read bool) *ReceiptBuilder {
	b.receipt.IsRead = read
	return b
}

// WithTrashed sets the trashed flag
func (b *ReceiptBuilder) WithTrashed(trashed bool) *ReceiptBuilder {
	b.receipt.Trashed = trashed
	return b
}

// Build returns the constructed Receipt
func (b *ReceiptBuilder) Build() *models.Receipt {
	return &b.receipt
}
