package models

import (
	"time"
)

// ParticipantTypeContact is the registry tag for contacts.
const ParticipantTypeContact = "contact"

// Contact is the built-in participant type the server ships with. Host
// applications embedding the core register their own types instead.
type Contact struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255" json:"name"`
	Email     string    `gorm:"uniqueIndex;size:255" json:"email"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName returns the table name for Contact
func (Contact) TableName() string {
	return "contacts"
}

// ParticipantID implements Participant.
func (c *Contact) ParticipantID() uint {
	return c.ID
}

// ParticipantType implements Participant.
func (c *Contact) ParticipantType() string {
	return ParticipantTypeContact
}

// NotificationAddress implements Participant. An empty email means the
// contact cannot be notified out-of-band and is skipped.
func (c *Contact) NotificationAddress(_ *Notification) string {
	return c.Email
}
