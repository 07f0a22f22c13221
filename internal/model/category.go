package model

import (
	"time"
)

// Category is a node in the dish category tree. ParentID is nil for roots.
// The parent graph must stay acyclic; reparenting goes through the
// hierarchy guard in the category service.
type Category struct {
	ID       string  `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name     string  `gorm:"not null;type:varchar(255)" json:"name"`
	ParentID *string `gorm:"index;type:varchar(64)" json:"parent_id"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}
