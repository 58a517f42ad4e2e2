package services

import (
	"context"

	"github.com/hometaste/hometaste-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the persistence boundary of the order lifecycle.
// Every method returns a classified *Error on failure, never an empty result in place of an error.
type Store interface {
	FetchOrder(ctx context.Context, id uint) (*models.Order, error)
	FetchOrdersByRole(ctx context.Context, userID uint, role models.Role, statuses ...models.OrderStatus) ([]models.Order, error)
	FetchAvailableDeliveries(ctx context.Context) ([]models.Order, error)
	FetchReviewsFor(ctx context.Context, userID uint) ([]models.Review, error)
	FetchDishesByCook(ctx context.Context, cookID uint) ([]models.Dish, error)
	FetchActiveDishes(ctx context.Context) ([]models.Dish, error)
	FetchGamification(ctx context.Context, userID uint) (*models.Gamification, error)
	WriteOrderStatus(ctx context.Context, id uint, from, to models.OrderStatus, deliveryID *uint) error
	WriteGamification(ctx context.Context, userID uint, apply func(models.Gamification) models.Gamification) error
	WithinTransaction(ctx context.Context, fn func(tx Store) error) error
}

// GormStore implements Store on top of gorm
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store backed by db
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// FetchOrder loads a single order
func (s *GormStore) FetchOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, id).Error; err != nil {
		return nil, ClassifyStoreError(err, "order")
	}
	return &order, nil
}

// FetchOrdersByRole lists the orders userID takes part in as role, newest first.
// statuses, when given, restricts the result to those statuses.
func (s *GormStore) FetchOrdersByRole(ctx context.Context, userID uint, role models.Role, statuses ...models.OrderStatus) ([]models.Order, error) {
	query := s.db.WithContext(ctx).Model(&models.Order{}).Preload("Dish")

	switch role {
	case models.RoleCustomer:
		query = query.Where("customer_id = ?", userID)
	case models.RoleCook:
		query = query.Where("cook_id = ?", userID)
	case models.RoleDelivery:
		query = query.Where("delivery_id = ?", userID)
	default:
		return nil, Validation("unknown role " + string(role))
	}

	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	orders := []models.Order{}
	if err := query.Order("created_at DESC").Order("id DESC").Find(&orders).Error; err != nil {
		return nil, ClassifyStoreError(err, "order")
	}
	return orders, nil
}

// FetchAvailableDeliveries lists ready delivery orders that no courier has taken yet, oldest first
func (s *GormStore) FetchAvailableDeliveries(ctx context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.WithContext(ctx).
		Preload("Dish").
		Preload("DeliveryAddress").
		Where("status = ? AND delivery_type = ? AND delivery_id IS NULL", models.StatusReady, models.DeliveryTypeDelivery).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, ClassifyStoreError(err, "order")
	}
	return orders, nil
}

// FetchReviewsFor lists the reviews written about userID
func (s *GormStore) FetchReviewsFor(ctx context.Context, userID uint) ([]models.Review, error) {
	reviews := []models.Review{}
	if err := s.db.WithContext(ctx).Where("reviewed_id = ?", userID).Order("created_at DESC").Find(&reviews).Error; err != nil {
		return nil, ClassifyStoreError(err, "review")
	}
	return reviews, nil
}

// FetchDishesByCook lists every dish of a cook, newest first
func (s *GormStore) FetchDishesByCook(ctx context.Context, cookID uint) ([]models.Dish, error) {
	dishes := []models.Dish{}
	if err := s.db.WithContext(ctx).Where("cook_id = ?", cookID).Order("created_at DESC").Order("id DESC").Find(&dishes).Error; err != nil {
		return nil, ClassifyStoreError(err, "dish")
	}
	return dishes, nil
}

// FetchActiveDishes lists the dishes shown on the feed with their cooks, newest first
func (s *GormStore) FetchActiveDishes(ctx context.Context) ([]models.Dish, error) {
	dishes := []models.Dish{}
	err := s.db.WithContext(ctx).
		Preload("Cook").
		Where("is_active = ?", true).
		Order("created_at DESC").
		Order("id DESC").
		Find(&dishes).Error
	if err != nil {
		return nil, ClassifyStoreError(err, "dish")
	}
	return dishes, nil
}

// FetchGamification loads the accumulator of userID
func (s *GormStore) FetchGamification(ctx context.Context, userID uint) (*models.Gamification, error) {
	var g models.Gamification
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&g).Error; err != nil {
		return nil, ClassifyStoreError(err, "gamification")
	}
	return &g, nil
}

// WriteOrderStatus moves order id from status `from` to `to`. The write only applies while the
// stored status is still `from`; otherwise the order changed underneath us and the call fails
// with ErrInvalidTransition.
func (s *GormStore) WriteOrderStatus(ctx context.Context, id uint, from, to models.OrderStatus, deliveryID *uint) error {
	updates := map[string]interface{}{"status": to}
	if deliveryID != nil {
		updates["delivery_id"] = *deliveryID
	}

	result := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return ClassifyStoreError(result.Error, "order")
	}
	if result.RowsAffected == 0 {
		return InvalidTransition("order status changed while it was being updated")
	}
	return nil
}

// WriteGamification applies fn to the accumulator of userID and saves the result.
// A missing accumulator starts from the initial state. The row is read with FOR UPDATE, so
// inside WithinTransaction concurrent deliveries for the same user apply one after the other.
func (s *GormStore) WriteGamification(ctx context.Context, userID uint, apply func(models.Gamification) models.Gamification) error {
	db := s.db.WithContext(ctx)

	initial := models.NewGamification(userID)
	err := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&initial).Error
	if err != nil {
		return ClassifyStoreError(err, "gamification")
	}

	var current models.Gamification
	err = db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).First(&current).Error
	if err != nil {
		return ClassifyStoreError(err, "gamification")
	}

	next := apply(current)
	next.ID = current.ID
	next.UserID = userID
	next.CreatedAt = current.CreatedAt
	if err := db.Save(&next).Error; err != nil {
		return ClassifyStoreError(err, "gamification")
	}
	return nil
}

// WithinTransaction runs fn with a store bound to a single database transaction.
// fn's error rolls the transaction back and is returned unchanged.
func (s *GormStore) WithinTransaction(ctx context.Context, fn func(tx Store) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
	return ClassifyStoreError(err, "order")
}
