package services

import (
	"github.com/hometaste/hometaste-api/config"
	"github.com/shopspring/decimal"
)

// Policy holds the payout and gamification rules applied when an order is delivered
type Policy struct {
	DeliveryCommissionRate decimal.Decimal
	PointsPerOrder         int
	PointsPerLevel         int
}

// DefaultPolicy returns the rules used when no configuration is loaded
func DefaultPolicy() Policy {
	return Policy{
		DeliveryCommissionRate: decimal.RequireFromString("0.10"),
		PointsPerOrder:         10,
		PointsPerLevel:         100,
	}
}

// PolicyFromConfig builds the policy from application configuration.
// A nil or unloaded config yields DefaultPolicy.
func PolicyFromConfig(cfg *config.Config) Policy {
	if cfg == nil || cfg.PointsPerLevel <= 0 {
		return DefaultPolicy()
	}
	return Policy{
		DeliveryCommissionRate: cfg.DeliveryCommissionRate,
		PointsPerOrder:         cfg.PointsPerOrder,
		PointsPerLevel:         cfg.PointsPerLevel,
	}
}
