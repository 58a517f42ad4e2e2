package models

import (
	"time"

	"gorm.io/gorm"
)

// Address is a delivery destination owned by a customer
type Address struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uint           `gorm:"not null;index" json:"user_id"`
	Street       string         `gorm:"not null" json:"street"`
	Number       string         `gorm:"not null" json:"number"`
	Complement   *string        `json:"complement,omitempty"`
	Neighborhood string         `gorm:"not null" json:"neighborhood"`
	City         string         `gorm:"not null" json:"city"`
	State        string         `gorm:"not null" json:"state"`
	ZipCode      string         `gorm:"not null" json:"zip_code"`
	IsDefault    bool           `gorm:"not null;default:false" json:"is_default"`
	CreatedAt    time.Time      `json:"created_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Address model
func (Address) TableName() string {
	return "addresses"
}
