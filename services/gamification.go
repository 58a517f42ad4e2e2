package services

import (
	"github.com/hometaste/hometaste-api/models"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// GamificationDelta is what one delivered order adds to a user's accumulator
type GamificationDelta struct {
	Orders   int
	Earnings decimal.Decimal
	Points   int
}

type badgeMilestone struct {
	badge  string
	orders int
}

var badgeMilestones = []badgeMilestone{
	{"first_order", 1},
	{"ten_orders", 10},
	{"fifty_orders", 50},
	{"hundred_orders", 100},
}

// UserDelta pairs an accumulator change with the user it belongs to
type UserDelta struct {
	UserID uint
	Delta  GamificationDelta
}

// DeliveredDeltas returns the accumulator changes for the cook and, when one is assigned,
// the courier of a delivered order. Eat-in orders have no courier entry.
func DeliveredDeltas(order models.Order, policy Policy) []UserDelta {
	deltas := []UserDelta{{
		UserID: order.CookID,
		Delta: GamificationDelta{
			Orders:   1,
			Earnings: order.TotalPrice,
			Points:   policy.PointsPerOrder,
		},
	}}
	if order.DeliveryID != nil {
		deltas = append(deltas, UserDelta{
			UserID: *order.DeliveryID,
			Delta: GamificationDelta{
				Orders:   1,
				Earnings: CourierEarnings(order.TotalPrice, policy.DeliveryCommissionRate),
				Points:   policy.PointsPerOrder,
			},
		})
	}
	return deltas
}

// CourierEarnings is the courier's share of an order total, rounded to cents
func CourierEarnings(total, rate decimal.Decimal) decimal.Decimal {
	return total.Mul(rate).Round(2)
}

// LevelForPoints maps points to a level: 1 at zero points, one more every pointsPerLevel
func LevelForPoints(points, pointsPerLevel int) int {
	if points <= 0 || pointsPerLevel <= 0 {
		return 1
	}
	return 1 + points/pointsPerLevel
}

// ApplyGamification returns g with delta applied. Level and badges are recomputed.
func ApplyGamification(g models.Gamification, delta GamificationDelta, policy Policy) models.Gamification {
	next := g
	next.TotalOrders += delta.Orders
	next.TotalEarnings = g.TotalEarnings.Add(delta.Earnings)
	next.Points += delta.Points
	next.Level = LevelForPoints(next.Points, policy.PointsPerLevel)
	next.Badges = badgesFor(g.Badges, next.TotalOrders)
	return next
}

// badgesFor merges the milestones reached by totalOrders into existing, keeping it a set
func badgesFor(existing datatypes.JSONSlice[string], totalOrders int) datatypes.JSONSlice[string] {
	seen := make(map[string]bool, len(existing))
	badges := make(datatypes.JSONSlice[string], 0, len(existing)+1)
	for _, b := range existing {
		if !seen[b] {
			seen[b] = true
			badges = append(badges, b)
		}
	}
	for _, m := range badgeMilestones {
		if totalOrders >= m.orders && !seen[m.badge] {
			seen[m.badge] = true
			badges = append(badges, m.badge)
		}
	}
	return badges
}
