package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus is a stage of the order lifecycle
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusAccepted   OrderStatus = "accepted"
	StatusPreparing  OrderStatus = "preparing"
	StatusReady      OrderStatus = "ready"
	StatusInDelivery OrderStatus = "in_delivery"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// Terminal reports whether no transition may leave s
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Valid reports whether s is a known status
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusPreparing, StatusReady,
		StatusInDelivery, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// DeliveryType says whether the order travels to the customer or is eaten at the cook's place
type DeliveryType string

const (
	DeliveryTypeDelivery DeliveryType = "delivery"
	DeliveryTypeEatIn    DeliveryType = "eat_in"
)

// Valid reports whether t is a known delivery type
func (t DeliveryType) Valid() bool {
	return t == DeliveryTypeDelivery || t == DeliveryTypeEatIn
}

// Order represents a dish ordered by a customer from a cook
type Order struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	CustomerID        uint            `gorm:"not null;index" json:"customer_id"`
	Customer          *Profile        `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	CookID            uint            `gorm:"not null;index" json:"cook_id"`
	Cook              *Profile        `gorm:"foreignKey:CookID" json:"cook,omitempty"`
	DeliveryID        *uint           `gorm:"index" json:"delivery_id"` // nullable, set when a courier takes the order
	DishID            uint            `gorm:"not null;index" json:"dish_id"`
	Dish              *Dish           `gorm:"foreignKey:DishID" json:"dish,omitempty"`
	Quantity          int             `gorm:"not null;check:quantity > 0" json:"quantity"`
	TotalPrice        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`
	DeliveryType      DeliveryType    `gorm:"type:varchar(16);not null" json:"delivery_type"`
	Status            OrderStatus     `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	DeliveryAddressID *uint           `gorm:"index" json:"delivery_address_id"`
	DeliveryAddress   *Address        `gorm:"foreignKey:DeliveryAddressID" json:"delivery_address,omitempty"`
	ScheduledTime     *time.Time      `json:"scheduled_time,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	DeletedAt         gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// HasCourier reports whether a courier has been assigned
func (o Order) HasCourier() bool {
	return o.DeliveryID != nil
}
