// Package events defines the messages published to the broker and the
// publisher port the services depend on.
package events

import (
	"context"
	"time"

	"github.com/NguyenTrongHinh/shop-management-system/internal/model"
)

const TypeOrderCreated = "OrderCreated"

// Envelope wraps every published message with its type and timestamp.
type Envelope struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurredAt"`
	Order      model.Order `json:"order"`
}

// Publisher sends an event keyed for partition ordering. Implementations
// must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}
