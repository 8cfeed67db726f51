package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"orderdesk/docstore"
	"orderdesk/mirror"
	"orderdesk/orders"
)

// --- Mock backend ---

type mockBackend struct {
	mu        sync.Mutex
	list      []orders.Order
	fetchErr  error
	patchErr  error
	deleteErr error
	fetches   int
	patches   []string
	deletes   []string
	hold      map[orders.Status]chan struct{} // PatchStatus to that status waits on the channel
	fetchGate chan struct{}                   // FetchOrders waits on it when set
}

func (m *mockBackend) Name() string                   { return "mock" }
func (m *mockBackend) Ping(ctx context.Context) error { return nil }

func (m *mockBackend) FetchOrders(ctx context.Context) ([]orders.Order, error) {
	if m.fetchGate != nil {
		<-m.fetchGate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches++
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return append([]orders.Order(nil), m.list...), nil
}

func (m *mockBackend) PatchStatus(ctx context.Context, id string, s orders.Status) error {
	if ch, ok := m.hold[s]; ok {
		<-ch
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patches = append(m.patches, id+"="+string(s))
	return m.patchErr
}

func (m *mockBackend) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, id)
	return m.deleteErr
}

// --- Recording emitter ---

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) OrderStatusChanged(id string, old *orders.Status, s orders.Status, actor string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "status:"+id+":"+string(s)+":"+actor)
}

func (r *recorder) OrderDeleted(id, actor string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "deleted:"+id+":"+actor)
}

func status(s orders.Status) *orders.Status { return &s }

func testView(t *testing.T, list ...orders.Order) (*View, *mockBackend, *recorder) {
	t.Helper()
	b := &mockBackend{list: list}
	rec := &recorder{}
	m := NewManager(b, rec, mirror.NewMemoryStore(), time.Second)
	v := m.View(context.Background(), "view-1")
	v.Mount(context.Background())
	return v, b, rec
}

func ab() []orders.Order {
	return []orders.Order{
		{ID: "A", Status: status(orders.StatusPending)},
		{ID: "B", Status: status(orders.StatusCompleted)},
	}
}

func idList(list []orders.Order) []string {
	out := make([]string, len(list))
	for i, o := range list {
		out[i] = o.ID
	}
	return out
}

func wantIDs(t *testing.T, got []orders.Order, want ...string) {
	t.Helper()
	g := idList(got)
	if len(g) != len(want) {
		t.Fatalf("ids = %v, want %v", g, want)
	}
	for i := range want {
		if g[i] != want[i] {
			t.Fatalf("ids = %v, want %v", g, want)
		}
	}
}

// --- Mount ---

func TestMountPopulatesMirror(t *testing.T) {
	v, _, _ := testView(t, ab()...)
	st := v.State()
	if !st.Mounted || st.Filter != orders.FilterAll || st.ExpandedID != "" {
		t.Errorf("state = %+v", st)
	}
	wantIDs(t, st.Orders, "A", "B")
}

func TestMountFailureShowsEmptyList(t *testing.T) {
	b := &mockBackend{fetchErr: errors.New("network down")}
	m := NewManager(b, nil, nil, 0)
	v := m.View(context.Background(), "v")
	v.Mount(context.Background())
	st := v.State()
	if !st.Mounted || len(st.Orders) != 0 {
		t.Errorf("state = %+v, want mounted and empty", st)
	}
}

func TestEnsureMountedFetchesOnce(t *testing.T) {
	v, b, _ := testView(t, ab()...)
	v.EnsureMounted(context.Background())
	v.EnsureMounted(context.Background())
	if b.fetches != 1 {
		t.Errorf("fetches = %d, want 1", b.fetches)
	}
}

func TestEnsureMountedConcurrentFirstUse(t *testing.T) {
	gate := make(chan struct{})
	b := &mockBackend{list: ab(), fetchGate: gate}
	v := NewManager(b, nil, nil, time.Second).View(context.Background(), "v")

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v.EnsureMounted(context.Background())
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(gate)
	wg.Wait()

	if b.fetches != 1 {
		t.Errorf("fetches = %d, want 1", b.fetches)
	}
	wantIDs(t, v.State().Orders, "A", "B")
}

func TestEnsureMountedKeepsFilterAfterFirstMount(t *testing.T) {
	v, b, _ := testView(t, ab()...)
	v.SetFilter(context.Background(), "completed")
	v.EnsureMounted(context.Background())
	if st := v.State(); st.Filter != "completed" || b.fetches != 1 {
		t.Errorf("filter = %q, fetches = %d", st.Filter, b.fetches)
	}
}

// --- Persistence ---

// slowStore blocks Save until release is closed.
type slowStore struct {
	*mirror.MemoryStore
	entered chan struct{}
	release chan struct{}
}

func (s *slowStore) Save(ctx context.Context, id string, snap *mirror.Snapshot) error {
	select {
	case s.entered <- struct{}{}:
	default:
	}
	<-s.release
	return s.MemoryStore.Save(ctx, id, snap)
}

func TestSnapshotSaveDoesNotBlockReaders(t *testing.T) {
	b := &mockBackend{list: ab()}
	st := &slowStore{MemoryStore: mirror.NewMemoryStore(), entered: make(chan struct{}, 1), release: make(chan struct{})}
	v := NewManager(b, nil, st, time.Second).View(context.Background(), "v")

	done := make(chan struct{})
	go func() {
		v.Mount(context.Background())
		close(done)
	}()
	<-st.entered

	read := make(chan State, 1)
	go func() { read <- v.State() }()
	select {
	case got := <-read:
		if !got.Mounted || len(got.Orders) != 2 {
			t.Errorf("state during save = %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("State blocked while the snapshot was being saved")
	}

	close(st.release)
	<-done
	snap, _ := st.Load(context.Background(), "v")
	if snap == nil || len(snap.Orders) != 2 {
		t.Errorf("saved snapshot = %+v", snap)
	}
}

func TestLatestSnapshotWins(t *testing.T) {
	v, _, _ := testView(t, ab()...)
	store := v.store.(*mirror.MemoryStore)

	v.mu.Lock()
	v.filter = "pending"
	older, olderRev := v.snapshotLocked()
	v.filter = "completed"
	newer, newerRev := v.snapshotLocked()
	v.mu.Unlock()

	v.persist(context.Background(), newer, newerRev)
	v.persist(context.Background(), older, olderRev)

	snap, _ := store.Load(context.Background(), "view-1")
	if snap == nil || snap.Filter != "completed" {
		t.Errorf("saved filter = %+v, want completed", snap)
	}
}

// --- Filter / toggle ---

func TestFilterCompleted(t *testing.T) {
	v, _, _ := testView(t, ab()...)
	if err := v.SetFilter(context.Background(), "completed"); err != nil {
		t.Fatal(err)
	}
	wantIDs(t, v.Filtered(), "B")
}

func TestInvalidFilterKeepsActiveFilter(t *testing.T) {
	v, _, _ := testView(t, ab()...)
	v.SetFilter(context.Background(), "pending")
	if err := v.SetFilter(context.Background(), "shipped"); !errors.Is(err, ErrInvalidFilter) {
		t.Errorf("err = %v, want ErrInvalidFilter", err)
	}
	if v.State().Filter != "pending" {
		t.Errorf("Filter = %q, want pending", v.State().Filter)
	}
}

func TestToggleTwiceCollapses(t *testing.T) {
	v, _, _ := testView(t, ab()...)
	ctx := context.Background()
	if got, _ := v.Toggle(ctx, "A"); got != "A" {
		t.Errorf("first toggle = %q", got)
	}
	if got, _ := v.Toggle(ctx, "B"); got != "B" {
		t.Errorf("other row = %q, want B", got)
	}
	if got, _ := v.Toggle(ctx, "B"); got != "" {
		t.Errorf("second toggle = %q, want collapsed", got)
	}
	if _, err := v.Toggle(ctx, "Z"); !errors.Is(err, ErrUnknownOrder) {
		t.Errorf("err = %v, want ErrUnknownOrder", err)
	}
}

// --- Status change ---

func TestChangeStatusDispatched(t *testing.T) {
	v, b, rec := testView(t, ab()...)
	o, msg, err := v.ChangeStatus(context.Background(), "A", "dispatched", "ops@shop.test")
	if err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	if *o.Status != orders.StatusDispatched {
		t.Errorf("returned status = %v", *o.Status)
	}
	if msg.Title != "Order Dispatched!" || msg.Text != "The order has been dispatched" {
		t.Errorf("message = %+v", msg)
	}
	got, _ := v.Order("A")
	if *got.Status != orders.StatusDispatched {
		t.Errorf("mirror A = %v", *got.Status)
	}
	other, _ := v.Order("B")
	if *other.Status != orders.StatusCompleted {
		t.Errorf("mirror B changed to %v", *other.Status)
	}
	if len(b.patches) != 1 || b.patches[0] != "A=dispatched" {
		t.Errorf("patches = %v", b.patches)
	}
	if len(rec.events) != 1 || rec.events[0] != "status:A:dispatched:ops@shop.test" {
		t.Errorf("events = %v", rec.events)
	}
}

func TestChangeStatusInvalidSkipsRemote(t *testing.T) {
	v, b, rec := testView(t, ab()...)
	_, msg, err := v.ChangeStatus(context.Background(), "A", "All", "")
	if !errors.Is(err, orders.ErrInvalidStatus) {
		t.Errorf("err = %v, want ErrInvalidStatus", err)
	}
	if msg != orders.MsgStatusFailed {
		t.Errorf("message = %+v", msg)
	}
	if len(b.patches) != 0 || len(rec.events) != 0 {
		t.Error("invalid status must not reach the store")
	}
}

func TestChangeStatusRemoteFailureKeepsMirror(t *testing.T) {
	v, b, rec := testView(t, ab()...)
	b.patchErr = errors.New("403 forbidden")
	_, msg, err := v.ChangeStatus(context.Background(), "A", "cancelled", "")
	if err == nil {
		t.Fatal("expected error")
	}
	if msg.Title != "Error!" || msg.Text != "Failed to update status." {
		t.Errorf("message = %+v", msg)
	}
	got, _ := v.Order("A")
	if *got.Status != orders.StatusPending {
		t.Errorf("mirror A = %v, want unchanged pending", *got.Status)
	}
	if len(rec.events) != 0 {
		t.Errorf("events = %v, want none", rec.events)
	}
}

func TestChangeStatusNotFoundInStore(t *testing.T) {
	v, b, _ := testView(t, ab()...)
	b.patchErr = docstore.ErrNotFound
	if _, _, err := v.ChangeStatus(context.Background(), "A", "completed", ""); !errors.Is(err, docstore.ErrNotFound) {
		t.Errorf("err = %v, want wrapped ErrNotFound", err)
	}
}

func TestChangeStatusUnknownOrder(t *testing.T) {
	v, b, _ := testView(t, ab()...)
	if _, _, err := v.ChangeStatus(context.Background(), "Z", "completed", ""); !errors.Is(err, ErrUnknownOrder) {
		t.Errorf("err = %v, want ErrUnknownOrder", err)
	}
	if len(b.patches) != 0 {
		t.Error("unknown order must not reach the store")
	}
}

func TestStatusAlwaysValidAfterChanges(t *testing.T) {
	v, _, _ := testView(t, append(ab(), orders.Order{ID: "C"})...)
	ctx := context.Background()
	for _, raw := range []string{"completed", "bogus", "", "processing", "Pending"} {
		v.ChangeStatus(ctx, "C", raw, "")
	}
	for _, o := range v.State().Orders {
		if o.Status != nil && !o.Status.Valid() {
			t.Errorf("order %s has invalid status %q", o.ID, *o.Status)
		}
	}
	c, _ := v.Order("C")
	if *c.Status != orders.StatusProcessing {
		t.Errorf("C = %v, want processing", *c.Status)
	}
}

// Completions apply in the order they land, not the order they were issued.
func TestChangeStatusLastCompletionWins(t *testing.T) {
	v, b, _ := testView(t, ab()...)
	release := make(chan struct{})
	b.hold = map[orders.Status]chan struct{}{orders.StatusCancelled: release}
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		v.ChangeStatus(ctx, "A", "cancelled", "")
		close(done)
	}()

	// Issued second, lands first.
	if _, _, err := v.ChangeStatus(ctx, "A", "completed", ""); err != nil {
		t.Fatal(err)
	}
	if got, _ := v.Order("A"); *got.Status != orders.StatusCompleted {
		t.Fatalf("A = %v, want completed", *got.Status)
	}

	close(release)
	<-done
	if got, _ := v.Order("A"); *got.Status != orders.StatusCancelled {
		t.Errorf("A = %v, want cancelled from the later completion", *got.Status)
	}
}

// --- Delete ---

func TestDeleteConfirmed(t *testing.T) {
	v, b, rec := testView(t, ab()...)
	v.Toggle(context.Background(), "B")
	msg, err := v.Delete(context.Background(), "B", true, "ops@shop.test")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if msg.Title != "Deleted!" || msg.Text != "The order has been removed." {
		t.Errorf("message = %+v", msg)
	}
	st := v.State()
	wantIDs(t, st.Orders, "A")
	if st.ExpandedID != "" {
		t.Errorf("ExpandedID = %q, want cleared", st.ExpandedID)
	}
	if len(b.deletes) != 1 || len(rec.events) != 1 || rec.events[0] != "deleted:B:ops@shop.test" {
		t.Errorf("deletes = %v events = %v", b.deletes, rec.events)
	}
}

func TestDeleteKeepsOrderOfRest(t *testing.T) {
	v, _, _ := testView(t, orders.Order{ID: "A"}, orders.Order{ID: "B"}, orders.Order{ID: "C"}, orders.Order{ID: "D"})
	v.Toggle(context.Background(), "D")
	v.Delete(context.Background(), "B", true, "")
	st := v.State()
	wantIDs(t, st.Orders, "A", "C", "D")
	if st.ExpandedID != "D" {
		t.Errorf("ExpandedID = %q, unrelated expansion should survive", st.ExpandedID)
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	v, b, _ := testView(t, ab()...)
	msg, err := v.Delete(context.Background(), "B", false, "")
	if !errors.Is(err, ErrNotConfirmed) {
		t.Errorf("err = %v, want ErrNotConfirmed", err)
	}
	if msg.Title != "Are you sure?" {
		t.Errorf("message = %+v", msg)
	}
	if len(b.deletes) != 0 {
		t.Error("unconfirmed delete reached the store")
	}
	wantIDs(t, v.State().Orders, "A", "B")
}

func TestDeleteRemoteFailure(t *testing.T) {
	v, b, _ := testView(t, ab()...)
	b.deleteErr = errors.New("timeout")
	msg, err := v.Delete(context.Background(), "B", true, "")
	if err == nil {
		t.Fatal("expected error")
	}
	if msg.Text != "Failed to delete the order." {
		t.Errorf("message = %+v", msg)
	}
	wantIDs(t, v.State().Orders, "A", "B")
}

// --- Manager ---

func TestManagerRestoresFromStore(t *testing.T) {
	ctx := context.Background()
	store := mirror.NewMemoryStore()
	b := &mockBackend{list: ab()}

	first := NewManager(b, nil, store, 0)
	v := first.View(ctx, "v1")
	v.Mount(ctx)
	v.SetFilter(ctx, "completed")
	v.ChangeStatus(ctx, "A", "dispatched", "")

	// A fresh process sees the same view without refetching.
	second := NewManager(b, nil, store, 0)
	restored := second.View(ctx, "v1")
	restored.EnsureMounted(ctx)
	if b.fetches != 1 {
		t.Errorf("fetches = %d, want 1", b.fetches)
	}
	st := restored.State()
	if st.Filter != "completed" || st.Total != 2 {
		t.Errorf("restored state = %+v", st)
	}
	a, _ := restored.Order("A")
	if *a.Status != orders.StatusDispatched {
		t.Errorf("A = %v, want dispatched", *a.Status)
	}
}

func TestManagerDiscard(t *testing.T) {
	ctx := context.Background()
	store := mirror.NewMemoryStore()
	m := NewManager(&mockBackend{list: ab()}, nil, store, 0)
	m.View(ctx, "v1").Mount(ctx)
	if m.Len() != 1 {
		t.Fatalf("Len = %d", m.Len())
	}
	m.Discard(ctx, "v1")
	if m.Len() != 0 {
		t.Errorf("Len after discard = %d", m.Len())
	}
	if snap, _ := store.Load(ctx, "v1"); snap != nil {
		t.Error("discarded view still in store")
	}
	if m.View(ctx, "v1").State().Mounted {
		t.Error("view recreated after discard should start unmounted")
	}
}
