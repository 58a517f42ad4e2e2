package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Review is a rating one party of an order leaves for another
type Review struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	OrderID    uint           `gorm:"not null;uniqueIndex:ux_reviews_order_reviewer_reviewed" json:"order_id"`
	ReviewerID uint           `gorm:"not null;uniqueIndex:ux_reviews_order_reviewer_reviewed" json:"reviewer_id"`
	ReviewedID uint           `gorm:"not null;index;uniqueIndex:ux_reviews_order_reviewer_reviewed" json:"reviewed_id"`
	Rating     int            `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment    *string        `gorm:"type:text" json:"comment,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Review model
func (Review) TableName() string {
	return "reviews"
}

// ValidRating reports whether rating is within the accepted scale
func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}
