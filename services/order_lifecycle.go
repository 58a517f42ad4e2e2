package services

import (
	"context"
	"log"
	"time"

	"github.com/hometaste/hometaste-api/models"
)

// OrderLifecycle applies status transitions and their side effects
type OrderLifecycle struct {
	store     Store
	policy    Policy
	publisher StatusPublisher
	now       func() time.Time
}

// NewOrderLifecycle creates an order lifecycle manager. A nil publisher drops events.
func NewOrderLifecycle(store Store, policy Policy, publisher StatusPublisher) *OrderLifecycle {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &OrderLifecycle{
		store:     store,
		policy:    policy,
		publisher: publisher,
		now:       time.Now,
	}
}

// ApplyTransition moves order orderID to status `to` on behalf of p.
// The status write and, for deliveries, the gamification update commit together.
// The status event is published after commit; publish failures are logged only.
func (l *OrderLifecycle) ApplyTransition(ctx context.Context, orderID uint, p Principal, to models.OrderStatus) (*models.Order, error) {
	var (
		from    models.OrderStatus
		updated *models.Order
	)

	err := l.store.WithinTransaction(ctx, func(tx Store) error {
		order, err := tx.FetchOrder(ctx, orderID)
		if err != nil {
			return err
		}
		from = order.Status

		next, err := Transition(*order, p, to, l.now())
		if err != nil {
			return err
		}

		if err := tx.WriteOrderStatus(ctx, order.ID, order.Status, next.Status, next.DeliveryID); err != nil {
			return err
		}

		if next.Status == models.StatusDelivered {
			for _, ud := range DeliveredDeltas(next, l.policy) {
				delta := ud.Delta
				err := tx.WriteGamification(ctx, ud.UserID, func(g models.Gamification) models.Gamification {
					return ApplyGamification(g, delta, l.policy)
				})
				if err != nil {
					return err
				}
			}
		}

		updated, err = tx.FetchOrder(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	event := StatusChangeEvent{
		OrderID:    updated.ID,
		From:       from,
		To:         updated.Status,
		ChangedBy:  p.ID,
		Role:       p.Role,
		CustomerID: updated.CustomerID,
		CookID:     updated.CookID,
		DeliveryID: updated.DeliveryID,
		ChangedAt:  updated.UpdatedAt,
	}
	if err := l.publisher.PublishStatusChange(ctx, event); err != nil {
		log.Printf("Failed to publish status change for order %d (%s -> %s): %v", updated.ID, from, updated.Status, err)
	}

	return updated, nil
}
