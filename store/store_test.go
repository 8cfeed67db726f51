package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"orderdesk/config"
)

// testDB creates a temporary SQLite database for testing.
func testDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	db, err := Open(&config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: dbPath},
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})
	return db
}

func strPtr(s string) *string { return &s }

// --- Admin user tests ---

func TestAdminUsers(t *testing.T) {
	db := testDB(t)

	exists, err := db.AdminUserExists()
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Fatal("fresh db should have no admin users")
	}

	if err := db.UpsertAdminUser("ops@shop.test", "hash-1"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	u, err := db.GetAdminUser("ops@shop.test")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u.PasswordHash != "hash-1" {
		t.Errorf("PasswordHash = %q, want hash-1", u.PasswordHash)
	}

	// Upsert replaces the hash instead of failing on the unique email.
	if err := db.UpsertAdminUser("ops@shop.test", "hash-2"); err != nil {
		t.Fatalf("upsert again: %v", err)
	}
	u, _ = db.GetAdminUser("ops@shop.test")
	if u.PasswordHash != "hash-2" {
		t.Errorf("PasswordHash after upsert = %q, want hash-2", u.PasswordHash)
	}

	if _, err := db.GetAdminUser("OPS@shop.test"); err == nil {
		t.Error("email lookup should be exact")
	}
}

// --- Order tests ---

func seedOrders(t *testing.T, db *DB) (a, b *Order) {
	t.Helper()
	ctx := context.Background()
	chair := &Product{Name: "Chair", Image: "image-abc-100x100-png"}
	lamp := &Product{Name: "Lamp"}
	for _, p := range []*Product{chair, lamp} {
		if err := db.CreateProduct(ctx, p); err != nil {
			t.Fatalf("create product: %v", err)
		}
	}
	a = &Order{FirstName: "Ada", LastName: "L", Phone: 5551234, Total: 120.5, Status: strPtr("pending"), CartRefs: []string{lamp.ID, chair.ID}}
	b = &Order{FirstName: "Bob", Total: 10, CartRefs: []string{chair.ID}}
	for _, o := range []*Order{a, b} {
		if err := db.CreateOrder(ctx, o); err != nil {
			t.Fatalf("create order: %v", err)
		}
	}
	return a, b
}

func TestOrderListResolvesCartItems(t *testing.T) {
	db := testDB(t)
	a, b := seedOrders(t, db)

	list, err := db.ListOrders(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].ID != a.ID || list[1].ID != b.ID {
		t.Errorf("order = [%s %s], want insertion order", list[0].ID, list[1].ID)
	}
	got := list[0]
	if got.Status == nil || *got.Status != "pending" {
		t.Errorf("Status = %v, want pending", got.Status)
	}
	if got.Phone != 5551234 || got.Total != 120.5 {
		t.Errorf("Phone/Total = %d/%v", got.Phone, got.Total)
	}
	if len(got.CartItems) != 2 || got.CartItems[0].Name != "Lamp" || got.CartItems[1].Name != "Chair" {
		t.Errorf("CartItems = %+v, want [Lamp Chair]", got.CartItems)
	}
	if got.CartItems[1].Image != "image-abc-100x100-png" {
		t.Errorf("Image = %q", got.CartItems[1].Image)
	}
	if list[1].Status != nil {
		t.Errorf("order without status should scan as nil, got %q", *list[1].Status)
	}
}

func TestSetOrderStatus(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	a, b := seedOrders(t, db)

	if err := db.SetOrderStatus(ctx, b.ID, "dispatched"); err != nil {
		t.Fatalf("set status: %v", err)
	}
	got, _ := db.GetOrder(ctx, b.ID)
	if got.Status == nil || *got.Status != "dispatched" {
		t.Errorf("Status = %v, want dispatched", got.Status)
	}
	other, _ := db.GetOrder(ctx, a.ID)
	if *other.Status != "pending" {
		t.Errorf("other order status changed to %q", *other.Status)
	}

	if err := db.SetOrderStatus(ctx, "missing", "pending"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteOrder(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	a, b := seedOrders(t, db)

	if err := db.DeleteOrder(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	list, _ := db.ListOrders(ctx)
	if len(list) != 1 || list[0].ID != b.ID {
		t.Fatalf("remaining = %v, want only %s", list, b.ID)
	}
	if err := db.DeleteOrder(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestRebind(t *testing.T) {
	got := Rebind(`UPDATE orders SET status=? WHERE id=?`)
	want := `UPDATE orders SET status=$1 WHERE id=$2`
	if got != want {
		t.Errorf("Rebind = %q, want %q", got, want)
	}
}
