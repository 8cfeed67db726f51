package dashboard

import (
	"context"
	"log"
	"sync"
	"time"

	"orderdesk/docstore"
	"orderdesk/mirror"
)

// Manager owns the live views of this process and restores views from the
// mirror store after a restart.
type Manager struct {
	backend docstore.Backend
	emitter Emitter
	store   mirror.Store
	timeout time.Duration

	mu    sync.Mutex
	views map[string]*View
}

// NewManager builds a Manager. store may be nil, in which case views live only
// in memory for the life of the process.
func NewManager(backend docstore.Backend, emitter Emitter, store mirror.Store, timeout time.Duration) *Manager {
	return &Manager{
		backend: backend,
		emitter: emitter,
		store:   store,
		timeout: timeout,
		views:   make(map[string]*View),
	}
}

func (m *Manager) Backend() docstore.Backend { return m.backend }

// View returns the view for viewID, creating an empty unmounted one if needed.
func (m *Manager) View(ctx context.Context, viewID string) *View {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.views[viewID]; ok {
		return v
	}
	v := newView(viewID, m.backend, m.emitter, m.store, m.timeout)
	if m.store != nil {
		snap, err := m.store.Load(ctx, viewID)
		if err != nil {
			log.Printf("dashboard: load view %s: %v", viewID, err)
		} else if snap != nil {
			v.restoreLocked(snap)
		}
	}
	m.views[viewID] = v
	return v
}

// Discard forgets a view, both in memory and in the store.
func (m *Manager) Discard(ctx context.Context, viewID string) {
	m.mu.Lock()
	delete(m.views, viewID)
	m.mu.Unlock()
	if m.store != nil {
		if err := m.store.Drop(ctx, viewID); err != nil {
			log.Printf("dashboard: drop view %s: %v", viewID, err)
		}
	}
}

// Len reports the number of live views.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.views)
}
