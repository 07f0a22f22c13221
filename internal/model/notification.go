package model

import (
	"time"
)

// Notification is a persisted message for a user, produced by the Kafka
// consumer from party events (join greetings and the like).
type Notification struct {
	ID      string `gorm:"primaryKey;type:varchar(64)" json:"id"`
	UserID  string `gorm:"index;not null;type:varchar(64)" json:"user_id"`
	PartyID string `gorm:"index;type:varchar(64)" json:"party_id"`
	Kind    string `gorm:"not null;type:varchar(32)" json:"kind"`
	Body    string `gorm:"type:text" json:"body"`
	Read    bool   `gorm:"not null;default:false" json:"read"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
