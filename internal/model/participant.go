package model

import (
	"time"
)

// PartyParticipant 参与者模型
// One row per (party, user). A row stands for 1 + NumGuests attendees.
type PartyParticipant struct {
	ID      string `gorm:"primaryKey;type:varchar(64)" json:"id"`
	PartyID string `gorm:"not null;type:varchar(64);uniqueIndex:idx_party_user" json:"party_id"`
	UserID  string `gorm:"not null;type:varchar(64);uniqueIndex:idx_party_user" json:"user_id"`

	NumGuests int `gorm:"not null;default:0" json:"num_guests"`

	JoinedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"joined_at"`
}

func (PartyParticipant) TableName() string {
	return "party_participants"
}

// Seats is the number of attendees this record stands for.
func (p *PartyParticipant) Seats() int {
	return 1 + p.NumGuests
}
