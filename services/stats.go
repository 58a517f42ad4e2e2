package services

import (
	"fmt"

	"github.com/hometaste/hometaste-api/models"
	"github.com/shopspring/decimal"
)

// StatsRows are the raw rows a dashboard is derived from
type StatsRows struct {
	Dishes  []models.Dish
	Orders  []models.Order
	Reviews []models.Review
}

// Stats is the dashboard summary for one principal. Fields that do not apply to the role stay zero.
type Stats struct {
	Role             models.Role     `json:"role"`
	TotalDishes      int             `json:"total_dishes"`
	ActiveOrders     int             `json:"active_orders"`
	TotalOrders      int             `json:"total_orders"`
	TotalDeliveries  int             `json:"total_deliveries"`
	ActiveDeliveries int             `json:"active_deliveries"`
	TotalEarnings    decimal.Decimal `json:"total_earnings"`
	TotalSpent       decimal.Decimal `json:"total_spent"`
	AverageRating    float64         `json:"average_rating"`
}

// ComputeStats derives the dashboard summary for the principal from its rows
func ComputeStats(role models.Role, principalID uint, rows StatsRows, policy Policy) (Stats, error) {
	switch role {
	case models.RoleCook:
		return CookStats(principalID, rows), nil
	case models.RoleDelivery:
		return DeliveryStats(principalID, rows, policy.DeliveryCommissionRate), nil
	case models.RoleCustomer:
		return CustomerStats(principalID, rows), nil
	}
	return Stats{}, Validation(fmt.Sprintf("no statistics for role %q", role))
}

// CookStats counts the cook's dishes and open orders and sums earnings over delivered orders
func CookStats(cookID uint, rows StatsRows) Stats {
	stats := Stats{Role: models.RoleCook, TotalEarnings: decimal.Zero, TotalSpent: decimal.Zero}

	for _, d := range rows.Dishes {
		if d.CookID == cookID {
			stats.TotalDishes++
		}
	}
	for _, o := range rows.Orders {
		if o.CookID != cookID {
			continue
		}
		stats.TotalOrders++
		switch o.Status {
		case models.StatusPending, models.StatusPreparing:
			stats.ActiveOrders++
		case models.StatusDelivered:
			stats.TotalEarnings = stats.TotalEarnings.Add(o.TotalPrice)
		}
	}
	stats.AverageRating = AverageRating(rows.Reviews, cookID)
	return stats
}

// DeliveryStats counts the courier's deliveries and sums its commission over delivered orders
func DeliveryStats(courierID uint, rows StatsRows, rate decimal.Decimal) Stats {
	stats := Stats{Role: models.RoleDelivery, TotalEarnings: decimal.Zero, TotalSpent: decimal.Zero}

	for _, o := range rows.Orders {
		if o.DeliveryID == nil || *o.DeliveryID != courierID {
			continue
		}
		switch o.Status {
		case models.StatusReady, models.StatusInDelivery:
			stats.ActiveDeliveries++
		case models.StatusDelivered:
			stats.TotalDeliveries++
			stats.TotalEarnings = stats.TotalEarnings.Add(CourierEarnings(o.TotalPrice, rate))
		}
	}
	stats.AverageRating = AverageRating(rows.Reviews, courierID)
	return stats
}

// CustomerStats counts the customer's orders and sums what was spent on delivered ones
func CustomerStats(customerID uint, rows StatsRows) Stats {
	stats := Stats{Role: models.RoleCustomer, TotalEarnings: decimal.Zero, TotalSpent: decimal.Zero}

	for _, o := range rows.Orders {
		if o.CustomerID != customerID {
			continue
		}
		stats.TotalOrders++
		if !o.Status.Terminal() {
			stats.ActiveOrders++
		}
		if o.Status == models.StatusDelivered {
			stats.TotalSpent = stats.TotalSpent.Add(o.TotalPrice)
		}
	}
	return stats
}

// AverageRating is the mean rating of reviews about reviewedID, 0 when there are none
func AverageRating(reviews []models.Review, reviewedID uint) float64 {
	sum, n := 0, 0
	for _, r := range reviews {
		if r.ReviewedID != reviewedID {
			continue
		}
		sum += r.Rating
		n++
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}
