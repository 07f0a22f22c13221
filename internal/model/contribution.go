package model

import (
	"time"
)

// Contribution is a participant's pledge toward one party dish.
type Contribution struct {
	ID            string `gorm:"primaryKey;type:varchar(64)" json:"id"`
	PartyID       string `gorm:"not null;type:varchar(64);uniqueIndex:idx_participant_dish" json:"party_id"`
	DishID        string `gorm:"not null;type:varchar(64);uniqueIndex:idx_participant_dish" json:"dish_id"`
	ParticipantID string `gorm:"not null;type:varchar(64);uniqueIndex:idx_participant_dish" json:"participant_id"`

	Amount float64 `gorm:"not null" json:"amount"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Contribution) TableName() string {
	return "contributions"
}
