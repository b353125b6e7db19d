package models

import (
	"time"
)

// Conversation is an ordered thread of message notifications with a
// freshness timestamp. Messages reference it by id; the conversation never
// owns receipts directly.
type Conversation struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Subject        string    `gorm:"size:255" json:"subject"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	LastActivityAt time.Time `gorm:"autoCreateTime;index" json:"last_activity_at"`

	// Relationships
	Notifications []Notification `gorm:"foreignKey:ConversationID" json:"-"`
}

// TableName returns the table name for Conversation
func (Conversation) TableName() string {
	return "conversations"
}
