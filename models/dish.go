package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Dish is a meal a cook offers on the feed
type Dish struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	CookID       uint            `gorm:"not null;index" json:"cook_id"`
	Cook         *Profile        `gorm:"foreignKey:CookID" json:"cook,omitempty"`
	Name         string          `gorm:"not null" json:"name"`
	Description  string          `gorm:"type:text" json:"description"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Category     string          `gorm:"index" json:"category"`
	PhotoKey     *string         `json:"photo_key,omitempty"`              // nullable, storage key of the uploaded photo
	PhotoURL     *string         `gorm:"-" json:"photo_url,omitempty"`     // computed field, resolved from PhotoKey
	AcceptsEatIn bool            `gorm:"not null;default:false" json:"accepts_eat_in"`
	IsActive     bool            `gorm:"not null;default:true;index" json:"is_active"`
	Rating       float64         `gorm:"not null;default:0" json:"rating"`
	TotalReviews int             `gorm:"not null;default:0" json:"total_reviews"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Dish model
func (Dish) TableName() string {
	return "dishes"
}

// CookName returns the owning cook's display name, or "" when the cook is not loaded
func (d Dish) CookName() string {
	if d.Cook == nil {
		return ""
	}
	return d.Cook.FullName
}
