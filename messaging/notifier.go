package messaging

import (
	"log"
	"sync"
	"sync/atomic"
)

// Notifier publishes order events in the background so request handlers never
// wait on the broker. Events that do not fit in the queue are dropped.
type Notifier struct {
	pub   Publisher
	topic string
	queue chan OrderEvent

	started  atomic.Bool
	stopOnce sync.Once
	stopChan chan struct{}
	done     chan struct{}
}

func NewNotifier(pub Publisher, topic string, size int) *Notifier {
	if size <= 0 {
		size = 256
	}
	return &Notifier{
		pub:      pub,
		topic:    topic,
		queue:    make(chan OrderEvent, size),
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (n *Notifier) Start() {
	if n.started.CompareAndSwap(false, true) {
		go n.run()
	}
}

// Stop drains what is already queued and returns once the worker exits.
func (n *Notifier) Stop() {
	n.stopOnce.Do(func() { close(n.stopChan) })
	if n.started.Load() {
		<-n.done
	}
}

// Notify queues evt for publishing. It reports false if the queue is full.
func (n *Notifier) Notify(evt OrderEvent) bool {
	select {
	case n.queue <- evt:
		return true
	default:
		log.Printf("messaging: queue full, dropping %s for %s", evt.Type, evt.OrderID)
		return false
	}
}

func (n *Notifier) run() {
	defer close(n.done)
	for {
		select {
		case evt := <-n.queue:
			n.send(evt)
		case <-n.stopChan:
			for {
				select {
				case evt := <-n.queue:
					n.send(evt)
				default:
					return
				}
			}
		}
	}
}

func (n *Notifier) send(evt OrderEvent) {
	data, err := evt.Encode()
	if err != nil {
		log.Printf("messaging: encode %s: %v", evt.Type, err)
		return
	}
	if err := n.pub.Publish(n.topic, data); err != nil {
		log.Printf("messaging: publish %s for %s: %v", evt.Type, evt.OrderID, err)
	}
}
