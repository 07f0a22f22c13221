package model

import (
	"time"
)

// PartyInvitation 邀请模型
// Token is unguessable (uuid). CurrentUses only ever grows and never
// passes MaxUses.
type PartyInvitation struct {
	ID      string `gorm:"primaryKey;type:varchar(64)" json:"id"`
	PartyID string `gorm:"index;not null;type:varchar(64)" json:"party_id"`
	Token   string `gorm:"uniqueIndex;not null;type:varchar(64)" json:"token"`

	MaxUses     int        `gorm:"not null;default:1" json:"max_uses"`
	CurrentUses int        `gorm:"not null;default:0" json:"current_uses"`
	ExpiresAt   *time.Time `json:"expires_at"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (PartyInvitation) TableName() string {
	return "party_invitations"
}

// Expired reports whether the invitation's deadline has passed.
func (i *PartyInvitation) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && i.ExpiresAt.Before(now)
}

// Exhausted reports whether every use has been consumed.
func (i *PartyInvitation) Exhausted() bool {
	return i.CurrentUses >= i.MaxUses
}
