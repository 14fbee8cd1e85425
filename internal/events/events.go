package events

import (
	"context"
	"time"
)

const (
	EventCreated = "product_created"
	EventUpdated = "product_updated"
	EventDeleted = "product_deleted"
)

// ProductEvent es el mensaje publicado en la cola tras cada escritura de producto.
type ProductEvent struct {
	EventType string    `json:"event_type"`
	ProductID string    `json:"product_id"`
	Name      string    `json:"name,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NopPublisher descarta los eventos; se usa cuando no hay RABBITMQ_URL.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ProductEvent) error { return nil }
func (NopPublisher) Close() error                                { return nil }
