// Package events publishes inventory changes for downstream consumers.
package events

import (
	"context"
	"time"
)

const (
	CarCreated     = "car.created"
	CarUpdated     = "car.updated"
	CarDeleted     = "car.deleted"
	BrandRecounted = "brand.recounted"
)

// Event describes one inventory change.
type Event struct {
	Type     string    `json:"type"`
	CarID    string    `json:"carId,omitempty"`
	Brand    string    `json:"brand,omitempty"`
	CarCount *int64    `json:"carCount,omitempty"`
	At       time.Time `json:"at"`
}

// Publisher delivers events. Delivery is best effort: implementations log
// failures instead of returning them.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Noop discards every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) {}
