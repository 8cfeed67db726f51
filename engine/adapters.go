package engine

import "orderdesk/orders"

// dashboardEmitter bridges the dashboard's emitter interface to the EventBus.
type dashboardEmitter struct {
	bus *EventBus
}

func (e *dashboardEmitter) OrderStatusChanged(id string, old *orders.Status, status orders.Status, actor string) {
	e.bus.Emit(Event{Type: EventOrderStatusChanged, Payload: OrderStatusChangedEvent{
		OrderID:   id,
		OldStatus: old,
		NewStatus: status,
		Actor:     actor,
	}})
}

func (e *dashboardEmitter) OrderDeleted(id, actor string) {
	e.bus.Emit(Event{Type: EventOrderDeleted, Payload: OrderDeletedEvent{
		OrderID: id,
		Actor:   actor,
	}})
}
