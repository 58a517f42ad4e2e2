package services

import (
	"context"

	"github.com/hometaste/hometaste-api/models"
)

const recentOrdersLimit = 5

// CookDashboard is what a cook sees after signing in
type CookDashboard struct {
	Stats        Stats          `json:"stats"`
	Dishes       []models.Dish  `json:"dishes"`
	RecentOrders []models.Order `json:"recent_orders"`
}

// DeliveryDashboard is what a courier sees after signing in
type DeliveryDashboard struct {
	Stats           Stats          `json:"stats"`
	ActiveOrders    []models.Order `json:"active_orders"`
	AvailableOrders []models.Order `json:"available_orders"`
}

// Dashboards loads the rows behind each role's dashboard and summarizes them
type Dashboards struct {
	store  Store
	policy Policy
}

// NewDashboards creates a dashboard loader
func NewDashboards(store Store, policy Policy) *Dashboards {
	return &Dashboards{store: store, policy: policy}
}

// Stats loads the rows for p and computes its statistics
func (d *Dashboards) Stats(ctx context.Context, p Principal) (Stats, error) {
	rows := StatsRows{}

	orders, err := d.store.FetchOrdersByRole(ctx, p.ID, p.Role)
	if err != nil {
		return Stats{}, err
	}
	rows.Orders = orders

	if p.Role == models.RoleCook {
		if rows.Dishes, err = d.store.FetchDishesByCook(ctx, p.ID); err != nil {
			return Stats{}, err
		}
	}

	if p.Role == models.RoleCook || p.Role == models.RoleDelivery {
		if rows.Reviews, err = d.store.FetchReviewsFor(ctx, p.ID); err != nil {
			return Stats{}, err
		}
	}

	return ComputeStats(p.Role, p.ID, rows, d.policy)
}

// Cook loads the cook dashboard: statistics, every dish and the most recent orders
func (d *Dashboards) Cook(ctx context.Context, cookID uint) (*CookDashboard, error) {
	dishes, err := d.store.FetchDishesByCook(ctx, cookID)
	if err != nil {
		return nil, err
	}
	orders, err := d.store.FetchOrdersByRole(ctx, cookID, models.RoleCook)
	if err != nil {
		return nil, err
	}
	reviews, err := d.store.FetchReviewsFor(ctx, cookID)
	if err != nil {
		return nil, err
	}

	recent := orders
	if len(recent) > recentOrdersLimit {
		recent = recent[:recentOrdersLimit]
	}

	return &CookDashboard{
		Stats:        CookStats(cookID, StatsRows{Dishes: dishes, Orders: orders, Reviews: reviews}),
		Dishes:       dishes,
		RecentOrders: recent,
	}, nil
}

// Delivery loads the courier dashboard: statistics, orders in hand and orders waiting for pickup
func (d *Dashboards) Delivery(ctx context.Context, courierID uint) (*DeliveryDashboard, error) {
	orders, err := d.store.FetchOrdersByRole(ctx, courierID, models.RoleDelivery)
	if err != nil {
		return nil, err
	}
	reviews, err := d.store.FetchReviewsFor(ctx, courierID)
	if err != nil {
		return nil, err
	}
	available, err := d.store.FetchAvailableDeliveries(ctx)
	if err != nil {
		return nil, err
	}

	active := []models.Order{}
	for _, o := range orders {
		if o.Status == models.StatusReady || o.Status == models.StatusInDelivery {
			active = append(active, o)
		}
	}

	return &DeliveryDashboard{
		Stats:           DeliveryStats(courierID, StatsRows{Orders: orders, Reviews: reviews}, d.policy.DeliveryCommissionRate),
		ActiveOrders:    active,
		AvailableOrders: available,
	}, nil
}
