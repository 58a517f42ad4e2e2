package services

import (
	"context"
	"sync"
	"time"

	"github.com/hometaste/hometaste-api/models"
)

// StatusChangeEvent is emitted after an order status transition commits
type StatusChangeEvent struct {
	OrderID    uint               `json:"order_id"`
	From       models.OrderStatus `json:"from"`
	To         models.OrderStatus `json:"to"`
	ChangedBy  uint               `json:"changed_by"`
	Role       models.Role        `json:"role"`
	CustomerID uint               `json:"customer_id"`
	CookID     uint               `json:"cook_id"`
	DeliveryID *uint              `json:"delivery_id,omitempty"`
	ChangedAt  time.Time          `json:"changed_at"`
}

// StatusPublisher delivers status change events to interested parties
type StatusPublisher interface {
	PublishStatusChange(ctx context.Context, event StatusChangeEvent) error
}

// NoopPublisher drops every event
type NoopPublisher struct{}

// PublishStatusChange does nothing
func (NoopPublisher) PublishStatusChange(context.Context, StatusChangeEvent) error {
	return nil
}

// RecordingPublisher keeps events in memory (for testing)
type RecordingPublisher struct {
	mu     sync.Mutex
	events []StatusChangeEvent
	Err    error
}

// PublishStatusChange records the event and returns Err
func (p *RecordingPublisher) PublishStatusChange(_ context.Context, event StatusChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.Err
}

// Events returns a copy of the recorded events
func (p *RecordingPublisher) Events() []StatusChangeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]StatusChangeEvent, len(p.events))
	copy(out, p.events)
	return out
}

var statusPublisherInstance StatusPublisher

// GetStatusPublisher returns the configured publisher, or a NoopPublisher when none was set
func GetStatusPublisher() StatusPublisher {
	if statusPublisherInstance == nil {
		return NoopPublisher{}
	}
	return statusPublisherInstance
}

// SetStatusPublisher sets the publisher used by the order lifecycle
func SetStatusPublisher(publisher StatusPublisher) {
	statusPublisherInstance = publisher
}
