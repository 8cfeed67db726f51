package mirror

import (
	"context"
	"log"
	"sync"

	"orderdesk/orders"
)

// Snapshot is the persisted form of one dashboard view.
type Snapshot struct {
	Mounted    bool           `json:"mounted"`
	Orders     []orders.Order `json:"orders"`
	Filter     string         `json:"filter"`
	ExpandedID string         `json:"expanded_id"`
}

// Store keeps view snapshots keyed by view id. Load returns nil, nil when the
// view does not exist.
type Store interface {
	Load(ctx context.Context, viewID string) (*Snapshot, error)
	Save(ctx context.Context, viewID string, snap *Snapshot) error
	Drop(ctx context.Context, viewID string) error
}

type MemoryStore struct {
	mu    sync.RWMutex
	views map[string]Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{views: make(map[string]Snapshot)}
}

func (m *MemoryStore) Load(_ context.Context, viewID string) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.views[viewID]
	if !ok {
		return nil, nil
	}
	snap.Orders = append([]orders.Order(nil), snap.Orders...)
	return &snap, nil
}

func (m *MemoryStore) Save(_ context.Context, viewID string, snap *Snapshot) error {
	cp := *snap
	cp.Orders = append([]orders.Order(nil), snap.Orders...)
	m.mu.Lock()
	m.views[viewID] = cp
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Drop(_ context.Context, viewID string) error {
	m.mu.Lock()
	delete(m.views, viewID)
	m.mu.Unlock()
	return nil
}

// FallbackStore reads and writes through Primary and drops to Secondary
// whenever Primary errors.
type FallbackStore struct {
	Primary   Store
	Secondary Store
}

func (f *FallbackStore) Load(ctx context.Context, viewID string) (*Snapshot, error) {
	snap, err := f.Primary.Load(ctx, viewID)
	if err == nil {
		return snap, nil
	}
	log.Printf("mirror: primary load %s: %v (using fallback)", viewID, err)
	return f.Secondary.Load(ctx, viewID)
}

func (f *FallbackStore) Save(ctx context.Context, viewID string, snap *Snapshot) error {
	if err := f.Primary.Save(ctx, viewID, snap); err != nil {
		log.Printf("mirror: primary save %s: %v (using fallback)", viewID, err)
		return f.Secondary.Save(ctx, viewID, snap)
	}
	// Keep the secondary from serving an older copy if the primary drops out later.
	f.Secondary.Drop(ctx, viewID)
	return nil
}

func (f *FallbackStore) Drop(ctx context.Context, viewID string) error {
	f.Secondary.Drop(ctx, viewID)
	return f.Primary.Drop(ctx, viewID)
}
