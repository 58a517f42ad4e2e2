package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// OrderStatusExchange is the topic exchange status events are published to.
// Routing keys have the form order.<status>.
const OrderStatusExchange = "order_status"

// RabbitMQPublisher publishes status events to RabbitMQ with publisher confirms
type RabbitMQPublisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	acks <-chan amqp.Confirmation
	mu   sync.Mutex // serializes Publish so confirms line up with messages
}

// NewRabbitMQPublisher dials url, declares the exchange and enables confirms
func NewRabbitMQPublisher(url string) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}

	if err := ch.ExchangeDeclare(OrderStatusExchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", OrderStatusExchange, err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	return &RabbitMQPublisher{
		conn: conn,
		ch:   ch,
		acks: ch.NotifyPublish(make(chan amqp.Confirmation, 1)),
	}, nil
}

// PublishStatusChange publishes event as persistent JSON and waits for the broker's confirm
func (p *RabbitMQPublisher) PublishStatusChange(ctx context.Context, event StatusChangeEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode status event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx,
		OrderStatusExchange,
		StatusRoutingKey(event),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish status event: %w", err)
	}

	select {
	case conf := <-p.acks:
		if conf.Ack {
			return nil
		}
		return errors.New("status event was NACKed by the broker")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close closes the channel and connection
func (p *RabbitMQPublisher) Close() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// StatusRoutingKey is the routing key an event is published under
func StatusRoutingKey(event StatusChangeEvent) string {
	return "order." + string(event.To)
}
