package engine

import (
	"orderdesk/messaging"
)

func (e *Engine) wireEventHandlers() {
	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(OrderStatusChangedEvent)
		old := "none"
		if ev.OldStatus != nil {
			old = string(*ev.OldStatus)
		}
		e.logFn("engine: order %s status %s -> %s by %s", ev.OrderID, old, ev.NewStatus, ev.Actor)
		if e.notifier != nil {
			e.notifier.Notify(messaging.OrderEvent{
				Type:    messaging.TypeOrderStatusChanged,
				OrderID: ev.OrderID,
				Status:  string(ev.NewStatus),
				Actor:   ev.Actor,
				At:      evt.Timestamp.UTC(),
			})
		}
	}, EventOrderStatusChanged)

	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(OrderDeletedEvent)
		e.logFn("engine: order %s deleted by %s", ev.OrderID, ev.Actor)
		if e.notifier != nil {
			e.notifier.Notify(messaging.OrderEvent{
				Type:    messaging.TypeOrderDeleted,
				OrderID: ev.OrderID,
				Actor:   ev.Actor,
				At:      evt.Timestamp.UTC(),
			})
		}
	}, EventOrderDeleted)

	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(ConnectionEvent)
		e.logFn("engine: %s", ev.Detail)
	}, EventDocStoreConnected, EventDocStoreDisconnected, EventMessagingConnected, EventMessagingDisconnected)
}
