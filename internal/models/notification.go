package models

import (
	"time"
)

// NotificationKind discriminates the notification variants. Message is the
// only variant that belongs to a conversation; plain notices stand alone.
type NotificationKind string

const (
	KindMessage NotificationKind = "message"
	KindNotice  NotificationKind = "notice"
)

// Notification is an authored item fanned out to participants through
// receipts. Content is immutable after delivery; only attachments and the
// conversation link are persisted alongside it.
type Notification struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	Kind           NotificationKind `gorm:"not null;size:32;index;default:message" json:"kind"`
	SenderType     string           `gorm:"size:64" json:"sender_type"`
	SenderID       uint             `json:"sender_id"`
	Subject        string           `gorm:"size:255" json:"subject"`
	Body           string           `json:"body"`
	ConversationID *uint            `gorm:"index" json:"conversation_id,omitempty"`
	CreatedAt      time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time        `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Conversation *Conversation `gorm:"foreignKey:ConversationID" json:"-"`
	Attachments  []Attachment  `gorm:"foreignKey:NotificationID;constraint:OnDelete:CASCADE" json:"attachments,omitempty"`

	// Recipients holds the delivery-time recipient set. It is cleared once
	// the delivery is committed and never persisted.
	Recipients []Participant `gorm:"-" json:"-"`
}

// TableName returns the table name for Notification
func (Notification) TableName() string {
	return "notifications"
}

// NewMessage builds the message variant of a notification addressed to the
// given recipients. The conversation may be a new, unsaved record; it is
// persisted together with the delivery.
func NewMessage(sender Participant, conversation *Conversation, subject, body string, recipients ...Participant) *Notification {
	n := &Notification{
		Kind:       KindMessage,
		Subject:    subject,
		Body:       body,
		Recipients: recipients,
	}
	n.SetSender(sender)
	n.SetConversation(conversation)
	return n
}

// NewNotice builds the conversation-less notice variant.
func NewNotice(sender Participant, subject, body string, recipients ...Participant) *Notification {
	n := &Notification{
		Kind:       KindNotice,
		Subject:    subject,
		Body:       body,
		Recipients: recipients,
	}
	n.SetSender(sender)
	return n
}

// IsMessage reports whether this notification is the message variant.
func (n *Notification) IsMessage() bool {
	return n.Kind == KindMessage
}

// Sender returns the stored sender reference.
func (n *Notification) Sender() ParticipantRef {
	return ParticipantRef{Type: n.SenderType, ID: n.SenderID}
}

// SetSender stores the sender reference.
func (n *Notification) SetSender(p Participant) {
	if p == nil {
		return
	}
	n.SenderType = p.ParticipantType()
	n.SenderID = p.ParticipantID()
}

// SetConversation links the notification to a conversation, keeping the
// foreign key in sync when the conversation is already saved.
func (n *Notification) SetConversation(c *Conversation) {
	n.Conversation = c
	if c != nil && c.ID != 0 {
		id := c.ID
		n.ConversationID = &id
	}
}
