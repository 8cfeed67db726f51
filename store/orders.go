package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Order struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Company   string
	Country   string
	City      string
	Address1  string
	Address2  string
	Phone     int64
	ZipCode   string
	Total     float64
	Discount  float64
	Status    *string
	OrderDate string
	CreatedAt time.Time
	// CartRefs holds product ids on write; CartItems is filled on read.
	CartRefs  []string
	CartItems []CartItem
}

type CartItem struct {
	Name  string
	Image string
}

const orderSelectCols = `id, first_name, last_name, email, company, country, city, address1, address2, phone, zip_code, total, discount, status, order_date, created_at`

func scanOrder(row interface{ Scan(...any) error }) (*Order, error) {
	var o Order
	var status sql.NullString
	var createdAt any
	err := row.Scan(&o.ID, &o.FirstName, &o.LastName, &o.Email, &o.Company,
		&o.Country, &o.City, &o.Address1, &o.Address2, &o.Phone, &o.ZipCode,
		&o.Total, &o.Discount, &status, &o.OrderDate, &createdAt)
	if err != nil {
		return nil, err
	}
	if status.Valid {
		s := status.String
		o.Status = &s
	}
	o.CreatedAt = parseTime(createdAt)
	return &o, nil
}

// CreateOrder inserts the order and its cart references in one transaction.
// An empty ID is replaced by a fresh uuid.
func (db *DB) CreateOrder(ctx context.Context, o *Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create order begin: %w", err)
	}
	defer tx.Rollback()

	var status any
	if o.Status != nil {
		status = *o.Status
	}
	_, err = tx.ExecContext(ctx, db.Q(`INSERT INTO orders (id, seq, first_name, last_name, email, company, country, city, address1, address2, phone, zip_code, total, discount, status, order_date) VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM orders), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		o.ID, o.FirstName, o.LastName, o.Email, o.Company, o.Country, o.City,
		o.Address1, o.Address2, o.Phone, o.ZipCode, o.Total, o.Discount, status, o.OrderDate)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	for i, ref := range o.CartRefs {
		if _, err := tx.ExecContext(ctx, db.Q(`INSERT INTO order_cart_items (order_id, position, product_id) VALUES (?, ?, ?)`),
			o.ID, i, ref); err != nil {
			return fmt.Errorf("create order cart item %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// ListOrders returns every order in insertion order, with cart items resolved
// through the products table.
func (db *DB) ListOrders(ctx context.Context) ([]*Order, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`SELECT %s FROM orders ORDER BY seq`, orderSelectCols))
	if err != nil {
		return nil, err
	}
	var list []*Order
	byID := make(map[string]*Order)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		o.CartItems = []CartItem{}
		list = append(list, o)
		byID[o.ID] = o
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	items, err := db.QueryContext(ctx, `SELECT ci.order_id, p.name, p.image FROM order_cart_items ci JOIN products p ON p.id = ci.product_id ORDER BY ci.order_id, ci.position`)
	if err != nil {
		return nil, err
	}
	defer items.Close()
	for items.Next() {
		var orderID string
		var it CartItem
		if err := items.Scan(&orderID, &it.Name, &it.Image); err != nil {
			return nil, err
		}
		if o, ok := byID[orderID]; ok {
			o.CartItems = append(o.CartItems, it)
		}
	}
	return list, items.Err()
}

func (db *DB) GetOrder(ctx context.Context, id string) (*Order, error) {
	row := db.QueryRowContext(ctx, db.Q(fmt.Sprintf(`SELECT %s FROM orders WHERE id=?`, orderSelectCols)), id)
	return scanOrder(row)
}

// SetOrderStatus patches the status field only.
func (db *DB) SetOrderStatus(ctx context.Context, id, status string) error {
	res, err := db.ExecContext(ctx, db.Q(`UPDATE orders SET status=?, updated_at=datetime('now','localtime') WHERE id=?`),
		status, id)
	if err != nil {
		return err
	}
	return expectOne(res, id)
}

func (db *DB) DeleteOrder(ctx context.Context, id string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, db.Q(`DELETE FROM order_cart_items WHERE order_id=?`), id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, db.Q(`DELETE FROM orders WHERE id=?`), id)
	if err != nil {
		return err
	}
	if err := expectOne(res, id); err != nil {
		return err
	}
	return tx.Commit()
}

func expectOne(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	return nil
}
