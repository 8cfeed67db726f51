package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Product is the referenced document behind an order's cart item.
type Product struct {
	ID    string
	Name  string
	Image string
}

func (db *DB) CreateProduct(ctx context.Context, p *Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := db.ExecContext(ctx, db.Q(`INSERT INTO products (id, name, image) VALUES (?, ?, ?)`),
		p.ID, p.Name, p.Image)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (db *DB) GetProduct(ctx context.Context, id string) (*Product, error) {
	var p Product
	err := db.QueryRowContext(ctx, db.Q(`SELECT id, name, image FROM products WHERE id=?`), id).
		Scan(&p.ID, &p.Name, &p.Image)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
