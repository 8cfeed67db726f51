// Package mirror holds the dashboard's local copy of fetched orders and the
// stores that keep it between requests.
package mirror

import "orderdesk/orders"

// Mirror is an insertion-ordered id -> order map. It is not safe for
// concurrent use; the owning view serializes access.
type Mirror struct {
	ids  []string
	byID map[string]orders.Order
}

func New(list []orders.Order) *Mirror {
	m := &Mirror{}
	m.Replace(list)
	return m
}

// Replace discards the current contents and loads list in order. A repeated
// id keeps its first position and its last value.
func (m *Mirror) Replace(list []orders.Order) {
	m.ids = make([]string, 0, len(list))
	m.byID = make(map[string]orders.Order, len(list))
	for _, o := range list {
		if _, dup := m.byID[o.ID]; !dup {
			m.ids = append(m.ids, o.ID)
		}
		m.byID[o.ID] = o
	}
}

func (m *Mirror) Len() int { return len(m.ids) }

func (m *Mirror) Get(id string) (orders.Order, bool) {
	o, ok := m.byID[id]
	return o, ok
}

// SetStatus replaces the status of one entry. It reports false for unknown ids.
func (m *Mirror) SetStatus(id string, s orders.Status) (orders.Order, bool) {
	o, ok := m.byID[id]
	if !ok {
		return orders.Order{}, false
	}
	o = o.WithStatus(s)
	m.byID[id] = o
	return o, true
}

// Remove drops one entry; the rest keep their relative order.
func (m *Mirror) Remove(id string) bool {
	if _, ok := m.byID[id]; !ok {
		return false
	}
	delete(m.byID, id)
	for i, v := range m.ids {
		if v == id {
			m.ids = append(m.ids[:i], m.ids[i+1:]...)
			break
		}
	}
	return true
}

// List returns the entries in insertion order.
func (m *Mirror) List() []orders.Order {
	out := make([]orders.Order, 0, len(m.ids))
	for _, id := range m.ids {
		out = append(out, m.byID[id])
	}
	return out
}
