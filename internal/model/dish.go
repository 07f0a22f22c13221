package model

import (
	"time"
)

// Dish 菜品模型
type Dish struct {
	ID          string `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name        string `gorm:"not null;type:varchar(255)" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	CategoryID  string `gorm:"index;type:varchar(64)" json:"category_id"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Dish) TableName() string {
	return "dishes"
}

// PartyDish binds a dish to a party with the per-person quantity the host
// asks for. Unit is free text (grams, pieces, liters).
type PartyDish struct {
	PartyID string `gorm:"primaryKey;type:varchar(64)" json:"party_id"`
	DishID  string `gorm:"primaryKey;type:varchar(64)" json:"dish_id"`

	AmountPerPerson float64 `gorm:"not null" json:"amount_per_person"`
	Unit            string  `gorm:"not null;type:varchar(32)" json:"unit"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (PartyDish) TableName() string {
	return "party_dishes"
}
