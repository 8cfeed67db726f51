// Package dashboard implements the per-session order dashboard: the local
// mirror of fetched orders plus the filter and row-expansion state, and the
// status-change and delete operations that keep the mirror in step with the
// document store.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"orderdesk/docstore"
	"orderdesk/mirror"
	"orderdesk/orders"
)

var (
	ErrInvalidFilter = errors.New("invalid filter")
	ErrNotConfirmed  = errors.New("delete not confirmed")
	ErrUnknownOrder  = errors.New("unknown order")
)

// Emitter receives notifications about confirmed mutations.
type Emitter interface {
	OrderStatusChanged(id string, old *orders.Status, status orders.Status, actor string)
	OrderDeleted(id string, actor string)
}

type nopEmitter struct{}

func (nopEmitter) OrderStatusChanged(string, *orders.Status, orders.Status, string) {}
func (nopEmitter) OrderDeleted(string, string)                                      {}

// State is what the dashboard renders.
type State struct {
	Mounted    bool
	Orders     []orders.Order // after the active filter
	Total      int            // mirror size before filtering
	Counts     map[string]int
	Filter     string
	ExpandedID string
}

// View is one dashboard instance. All reads and writes of its mirror, filter
// and expanded row go through mu; remote calls and snapshot saves run without
// it. mountMu serializes fetches so a first mount happens once.
type View struct {
	id      string
	backend docstore.Backend
	emitter Emitter
	store   mirror.Store
	timeout time.Duration

	mountMu sync.Mutex

	mu       sync.Mutex
	mounted  bool
	mirror   *mirror.Mirror
	filter   string
	expanded string
	rev      uint64 // bumped per snapshot taken

	saveMu   sync.Mutex
	savedRev uint64
}

func newView(id string, backend docstore.Backend, emitter Emitter, store mirror.Store, timeout time.Duration) *View {
	if emitter == nil {
		emitter = nopEmitter{}
	}
	return &View{
		id:      id,
		backend: backend,
		emitter: emitter,
		store:   store,
		timeout: timeout,
		mirror:  mirror.New(nil),
		filter:  orders.FilterAll,
	}
}

func (v *View) ID() string { return v.id }

func (v *View) remoteContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if v.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, v.timeout)
}

// Mount fetches every order once and resets the view. A failed fetch is
// logged and leaves the view mounted with an empty list.
func (v *View) Mount(ctx context.Context) {
	v.mountMu.Lock()
	defer v.mountMu.Unlock()
	v.mount(ctx)
}

func (v *View) mount(ctx context.Context) {
	rctx, cancel := v.remoteContext(ctx)
	list, err := v.backend.FetchOrders(rctx)
	cancel()
	if err != nil {
		log.Printf("dashboard: fetch orders (%s): %v", v.backend.Name(), err)
		list = nil
	}

	v.mu.Lock()
	v.mirror.Replace(list)
	v.filter = orders.FilterAll
	v.expanded = ""
	v.mounted = true
	snap, rev := v.snapshotLocked()
	v.mu.Unlock()
	v.persist(ctx, snap, rev)
}

// EnsureMounted mounts the view on first use only. Concurrent first callers
// share a single fetch.
func (v *View) EnsureMounted(ctx context.Context) {
	if v.isMounted() {
		return
	}
	v.mountMu.Lock()
	defer v.mountMu.Unlock()
	if !v.isMounted() {
		v.mount(ctx)
	}
}

func (v *View) isMounted() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mounted
}

func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	all := v.mirror.List()
	return State{
		Mounted:    v.mounted,
		Orders:     orders.Filter(all, v.filter),
		Total:      len(all),
		Counts:     orders.CountByStatus(all),
		Filter:     v.filter,
		ExpandedID: v.expanded,
	}
}

// Filtered returns the mirror after the active filter.
func (v *View) Filtered() []orders.Order {
	v.mu.Lock()
	defer v.mu.Unlock()
	return orders.Filter(v.mirror.List(), v.filter)
}

// All returns the whole mirror in fetch order.
func (v *View) All() []orders.Order {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mirror.List()
}

// Order returns one mirrored order regardless of the active filter.
func (v *View) Order(id string) (orders.Order, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mirror.Get(id)
}

// SetFilter switches the active filter. Unknown labels leave it unchanged.
func (v *View) SetFilter(ctx context.Context, label string) error {
	if !orders.ValidFilter(label) {
		return fmt.Errorf("%w: %q", ErrInvalidFilter, label)
	}
	v.mu.Lock()
	v.filter = label
	snap, rev := v.snapshotLocked()
	v.mu.Unlock()
	v.persist(ctx, snap, rev)
	return nil
}

// Toggle expands id, or collapses it when it is already the expanded row.
func (v *View) Toggle(ctx context.Context, id string) (string, error) {
	v.mu.Lock()
	if _, ok := v.mirror.Get(id); !ok {
		expanded := v.expanded
		v.mu.Unlock()
		return expanded, fmt.Errorf("%w: %s", ErrUnknownOrder, id)
	}
	v.expanded = orders.Toggle(v.expanded, id)
	expanded := v.expanded
	snap, rev := v.snapshotLocked()
	v.mu.Unlock()
	v.persist(ctx, snap, rev)
	return expanded, nil
}

// ChangeStatus patches the order's status in the document store and, once the
// store confirms, applies the same change to the mirror. The returned message
// is always suitable for display, including on error.
func (v *View) ChangeStatus(ctx context.Context, id, raw, actor string) (orders.Order, orders.Message, error) {
	status, err := orders.ParseStatus(raw)
	if err != nil {
		return orders.Order{}, orders.MsgStatusFailed, err
	}

	v.mu.Lock()
	current, ok := v.mirror.Get(id)
	v.mu.Unlock()
	if !ok {
		return orders.Order{}, orders.MsgStatusFailed, fmt.Errorf("%w: %s", ErrUnknownOrder, id)
	}

	rctx, cancel := v.remoteContext(ctx)
	err = v.backend.PatchStatus(rctx, id, status)
	cancel()
	if err != nil {
		log.Printf("dashboard: patch status %s -> %s: %v", id, status, err)
		return current, orders.MsgStatusFailed, fmt.Errorf("patch status %s: %w", id, err)
	}

	v.mu.Lock()
	updated, ok := v.mirror.SetStatus(id, status)
	if !ok {
		// Deleted locally while the patch was in flight.
		updated = current.WithStatus(status)
	}
	snap, rev := v.snapshotLocked()
	v.mu.Unlock()
	v.persist(ctx, snap, rev)

	v.emitter.OrderStatusChanged(id, current.Status, status, actor)
	return updated, orders.StatusMessage(status), nil
}

// Delete removes the order from the document store and then from the mirror.
// Nothing happens unless confirmed is true.
func (v *View) Delete(ctx context.Context, id string, confirmed bool, actor string) (orders.Message, error) {
	if !confirmed {
		return orders.MsgConfirmDelete, ErrNotConfirmed
	}

	v.mu.Lock()
	_, ok := v.mirror.Get(id)
	v.mu.Unlock()
	if !ok {
		return orders.MsgDeleteFailed, fmt.Errorf("%w: %s", ErrUnknownOrder, id)
	}

	rctx, cancel := v.remoteContext(ctx)
	err := v.backend.Delete(rctx, id)
	cancel()
	if err != nil {
		log.Printf("dashboard: delete order %s: %v", id, err)
		return orders.MsgDeleteFailed, fmt.Errorf("delete %s: %w", id, err)
	}

	v.mu.Lock()
	v.mirror.Remove(id)
	if v.expanded == id {
		v.expanded = ""
	}
	snap, rev := v.snapshotLocked()
	v.mu.Unlock()
	v.persist(ctx, snap, rev)

	v.emitter.OrderDeleted(id, actor)
	return orders.MsgDeleted, nil
}

// snapshotLocked captures the view for persisting. It returns nil without a
// store.
func (v *View) snapshotLocked() (*mirror.Snapshot, uint64) {
	if v.store == nil {
		return nil, 0
	}
	v.rev++
	return &mirror.Snapshot{
		Mounted:    v.mounted,
		Orders:     v.mirror.List(),
		Filter:     v.filter,
		ExpandedID: v.expanded,
	}, v.rev
}

func (v *View) restoreLocked(snap *mirror.Snapshot) {
	v.mounted = snap.Mounted
	v.mirror.Replace(snap.Orders)
	v.filter = snap.Filter
	if !orders.ValidFilter(v.filter) {
		v.filter = orders.FilterAll
	}
	v.expanded = snap.ExpandedID
}

// persist saves snap unless a newer snapshot has already been saved.
func (v *View) persist(ctx context.Context, snap *mirror.Snapshot, rev uint64) {
	if snap == nil {
		return
	}
	v.saveMu.Lock()
	defer v.saveMu.Unlock()
	if rev <= v.savedRev {
		return
	}
	if err := v.store.Save(context.WithoutCancel(ctx), v.id, snap); err != nil {
		log.Printf("dashboard: save view %s: %v", v.id, err)
		return
	}
	v.savedRev = rev
}
