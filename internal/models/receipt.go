package models

import (
	"time"
)

// Mailbox types a receipt can sit in.
const (
	MailboxInbox   = "inbox"
	MailboxSentbox = "sentbox"
)

// Receipt is one participant's personal view of one delivered notification.
// Receipts are created as a batch at delivery time and mutated only through
// the defined state transitions; trash is a soft state, never deletion.
type Receipt struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	NotificationID uint      `gorm:"not null;index" json:"notification_id"`
	ReceiverType   string    `gorm:"not null;size:64;index:idx_receipts_receiver" json:"receiver_type"`
	ReceiverID     uint      `gorm:"not null;index:idx_receipts_receiver" json:"receiver_id"`
	MailboxType    string    `gorm:"not null;size:16;index" json:"mailbox_type"`
	IsRead         bool      `gorm:"default:false" json:"is_read"`
	Trashed        bool      `gorm:"default:false" json:"trashed"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Notification Notification `gorm:"foreignKey:NotificationID;constraint:OnDelete:CASCADE" json:"-"`

	// Errors carries validation complaints on an unsaved draft returned from
	// a failed delivery. Never persisted.
	Errors *ValidationError `gorm:"-" json:"errors,omitempty"`
}

// TableName returns the table name for Receipt
func (Receipt) TableName() string {
	return "receipts"
}

// Receiver returns the stored receiver reference.
func (r *Receipt) Receiver() ParticipantRef {
	return ParticipantRef{Type: r.ReceiverType, ID: r.ReceiverID}
}

// SetReceiver stores the receiver reference.
func (r *Receipt) SetReceiver(p Participant) {
	if p == nil {
		return
	}
	r.ReceiverType = p.ParticipantType()
	r.ReceiverID = p.ParticipantID()
}

// SetReceiverRef stores an already-tagged receiver reference.
func (r *Receipt) SetReceiverRef(ref ParticipantRef) {
	r.ReceiverType = ref.Type
	r.ReceiverID = ref.ID
}

// IsUnread reports whether the receipt has not been read yet.
func (r *Receipt) IsUnread() bool {
	return !r.IsRead
}

// IsTrashed reports whether the receipt sits in the trash.
func (r *Receipt) IsTrashed() bool {
	return r.Trashed
}

// GetConversation resolves the owning conversation through the notification.
// Only the message variant belongs to a conversation; for any other variant
// this yields nil, not an error.
func (r *Receipt) GetConversation() *Conversation {
	if !r.Notification.IsMessage() {
		return nil
	}
	return r.Notification.Conversation
}

// Validate checks the draft receipt and the notification graph behind it.
// Returns nil when everything required is present.
func (r *Receipt) Validate() *ValidationError {
	verr := NewValidationError()

	if r.Receiver().IsZero() {
		verr.Add("receiver", "must be present")
	}
	if r.Notification.Sender().IsZero() {
		verr.Add("notification.sender", "must be present")
	}
	if r.Notification.IsMessage() {
		if r.Notification.Subject == "" {
			verr.Add("notification.subject", "can't be blank")
		}
		if r.Notification.Conversation != nil && r.Notification.Conversation.Subject == "" {
			verr.Add("notification.conversation.subject", "can't be blank")
		}
	}

	verr.suppressDuplicateSubject()
	if !verr.HasErrors() {
		return nil
	}
	return verr
}
