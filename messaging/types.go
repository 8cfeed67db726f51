package messaging

import (
	"encoding/json"
	"time"
)

// Order event types published downstream.
const (
	TypeOrderStatusChanged = "order.status_changed"
	TypeOrderDeleted       = "order.deleted"
)

// OrderEvent is the wire payload for order notifications.
type OrderEvent struct {
	Type    string    `json:"type"`
	OrderID string    `json:"order_id"`
	Status  string    `json:"status,omitempty"`
	Actor   string    `json:"actor,omitempty"`
	At      time.Time `json:"at"`
}

func (e OrderEvent) Encode() ([]byte, error) {
	return json.Marshal(e)
}
