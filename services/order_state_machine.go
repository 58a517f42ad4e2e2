package services

import (
	"fmt"
	"time"

	"github.com/hometaste/hometaste-api/models"
)

// Principal is an authenticated actor: a profile id and its role
type Principal struct {
	ID   uint
	Role models.Role
}

// OrderTransition is one edge of the order state machine and the roles allowed to traverse it
type OrderTransition struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Roles []models.Role
	// EatInOnly restricts the edge to orders served at the cook's place
	EatInOnly bool
}

var orderTransitions = []OrderTransition{
	{From: models.StatusPending, To: models.StatusAccepted, Roles: []models.Role{models.RoleCook}},
	{From: models.StatusAccepted, To: models.StatusPreparing, Roles: []models.Role{models.RoleCook}},
	{From: models.StatusPreparing, To: models.StatusReady, Roles: []models.Role{models.RoleCook}},
	{From: models.StatusReady, To: models.StatusInDelivery, Roles: []models.Role{models.RoleDelivery}},
	{From: models.StatusInDelivery, To: models.StatusDelivered, Roles: []models.Role{models.RoleDelivery}},
	{From: models.StatusReady, To: models.StatusDelivered, Roles: []models.Role{models.RoleCook}, EatInOnly: true},

	{From: models.StatusPending, To: models.StatusCancelled, Roles: []models.Role{models.RoleCustomer, models.RoleCook}},
	{From: models.StatusAccepted, To: models.StatusCancelled, Roles: []models.Role{models.RoleCustomer, models.RoleCook}},
	{From: models.StatusPreparing, To: models.StatusCancelled, Roles: []models.Role{models.RoleCustomer, models.RoleCook}},
	{From: models.StatusReady, To: models.StatusCancelled, Roles: []models.Role{models.RoleCustomer, models.RoleCook}},
	{From: models.StatusInDelivery, To: models.StatusCancelled, Roles: []models.Role{models.RoleCustomer, models.RoleCook}},
}

// Transitions returns the full state machine
func Transitions() []OrderTransition {
	out := make([]OrderTransition, len(orderTransitions))
	copy(out, orderTransitions)
	return out
}

func (t OrderTransition) appliesTo(order models.Order) bool {
	return !t.EatInOnly || order.DeliveryType == models.DeliveryTypeEatIn
}

func (t OrderTransition) allows(role models.Role) bool {
	for _, r := range t.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Transition validates moving order to status `to` on behalf of p and returns the updated copy.
// The input order is not modified.
func Transition(order models.Order, p Principal, to models.OrderStatus, now time.Time) (models.Order, error) {
	if !to.Valid() {
		return order, InvalidTransition(fmt.Sprintf("no transition to unknown status %q", to))
	}
	if order.Status.Terminal() {
		return order, InvalidTransition(fmt.Sprintf("order is %s and can no longer change", order.Status))
	}
	if !p.Role.Valid() {
		return order, Unauthorized("a profile role is required to change orders")
	}

	roleActs := false
	var edge *OrderTransition
	for i := range orderTransitions {
		t := &orderTransitions[i]
		if t.From != order.Status || !t.appliesTo(order) {
			continue
		}
		if t.allows(p.Role) {
			roleActs = true
		}
		if t.To == to {
			edge = t
		}
	}

	if !roleActs {
		return order, Unauthorized(fmt.Sprintf("a %s cannot act on a %s order", p.Role, order.Status))
	}
	if edge == nil {
		return order, InvalidTransition(fmt.Sprintf("cannot move order from %s to %s", order.Status, to))
	}
	if !edge.allows(p.Role) {
		return order, Unauthorized(fmt.Sprintf("a %s cannot move an order from %s to %s", p.Role, order.Status, to))
	}
	if err := checkParty(order, p); err != nil {
		return order, err
	}

	next := order
	next.Status = to
	next.UpdatedAt = now
	if to == models.StatusInDelivery && next.DeliveryID == nil {
		id := p.ID
		next.DeliveryID = &id
	}
	return next, nil
}

// checkParty verifies that p is the order's cook, customer or assigned courier
func checkParty(order models.Order, p Principal) error {
	switch p.Role {
	case models.RoleCook:
		if order.CookID != p.ID {
			return Unauthorized("only the order's cook can change it")
		}
	case models.RoleCustomer:
		if order.CustomerID != p.ID {
			return Unauthorized("only the customer who placed the order can change it")
		}
	case models.RoleDelivery:
		if order.DeliveryType != models.DeliveryTypeDelivery {
			return Unauthorized("eat-in orders are not delivered by couriers")
		}
		if order.DeliveryID != nil && *order.DeliveryID != p.ID {
			return Unauthorized("order is assigned to another courier")
		}
	}
	return nil
}

// AllowedTransitions lists the statuses p may move order to
func AllowedTransitions(order models.Order, p Principal) []models.OrderStatus {
	next := []models.OrderStatus{}
	if order.Status.Terminal() {
		return next
	}
	for _, t := range orderTransitions {
		if t.From != order.Status || !t.appliesTo(order) || !t.allows(p.Role) {
			continue
		}
		if checkParty(order, p) != nil {
			continue
		}
		next = append(next, t.To)
	}
	return next
}
