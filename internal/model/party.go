package model

import (
	"time"
)

// PartyStatus is the lifecycle state of a party.
type PartyStatus string

const (
	PartyStatusOpen   PartyStatus = "open"
	PartyStatusFull   PartyStatus = "full"
	PartyStatusClosed PartyStatus = "closed"
)

// AcceptsJoins reports whether new participants may still be admitted.
// FULL is sticky: a participant leaving does not reopen the party, only
// an explicit host reopen does.
func (s PartyStatus) AcceptsJoins() bool {
	return s == PartyStatusOpen
}

// PartyPrivacy controls who can see a party in listings.
type PartyPrivacy string

const (
	PartyPrivacyPublic  PartyPrivacy = "public"
	PartyPrivacyClosed  PartyPrivacy = "closed"
	PartyPrivacyPrivate PartyPrivacy = "private"
)

// Party 聚餐活动模型
type Party struct {
	ID     string `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name   string `gorm:"not null;type:varchar(255)" json:"name"`
	HostID string `gorm:"index;not null;type:varchar(64)" json:"host_id"`

	Date time.Time `gorm:"not null" json:"date"`

	// MaxParticipants counts participants plus their guests. Nil means
	// unlimited.
	MaxParticipants *int         `json:"max_participants"`
	Status          PartyStatus  `gorm:"not null;default:open;type:varchar(16)" json:"status"`
	Privacy         PartyPrivacy `gorm:"not null;default:public;type:varchar(16)" json:"privacy"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Party) TableName() string {
	return "parties"
}
