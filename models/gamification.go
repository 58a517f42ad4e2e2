package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Gamification accumulates points, level and badges for a single user.
// Only the delivered transition of an order changes it.
type Gamification struct {
	ID            uint                        `gorm:"primaryKey" json:"id"`
	UserID        uint                        `gorm:"not null;uniqueIndex" json:"user_id"`
	Points        int                         `gorm:"not null;default:0" json:"points"`
	Level         int                         `gorm:"not null;default:1" json:"level"`
	Badges        datatypes.JSONSlice[string] `json:"badges"`
	TotalOrders   int                         `gorm:"not null;default:0" json:"total_orders"`
	TotalEarnings decimal.Decimal             `gorm:"type:decimal(12,2);not null;default:0" json:"total_earnings"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
}

// TableName specifies the table name for the Gamification model
func (Gamification) TableName() string {
	return "gamification"
}

// NewGamification returns the initial record for a freshly registered user
func NewGamification(userID uint) Gamification {
	return Gamification{
		UserID:        userID,
		Points:        0,
		Level:         1,
		Badges:        datatypes.JSONSlice[string]{},
		TotalOrders:   0,
		TotalEarnings: decimal.Zero,
	}
}
