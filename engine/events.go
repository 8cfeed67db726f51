package engine

import "orderdesk/orders"

const (
	EventOrderStatusChanged EventType = iota + 1
	EventOrderDeleted
	EventDocStoreConnected
	EventDocStoreDisconnected
	EventMessagingConnected
	EventMessagingDisconnected
)

// --- Event payloads ---

type OrderStatusChangedEvent struct {
	OrderID   string
	OldStatus *orders.Status
	NewStatus orders.Status
	Actor     string
}

type OrderDeletedEvent struct {
	OrderID string
	Actor   string
}

type ConnectionEvent struct {
	Detail string
}
