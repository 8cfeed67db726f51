// Package sqldoc serves order documents out of the local SQL database. It is
// the default backend for development and demos.
package sqldoc

import (
	"context"
	"errors"
	"fmt"

	"orderdesk/docstore"
	"orderdesk/orders"
	"orderdesk/store"
)

type Backend struct {
	db *store.DB
}

func New(db *store.DB) *Backend {
	return &Backend{db: db}
}

func (b *Backend) Name() string { return "sql/" + b.db.Driver() }

func (b *Backend) FetchOrders(ctx context.Context) ([]orders.Order, error) {
	rows, err := b.db.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch orders: %w", err)
	}
	out := make([]orders.Order, 0, len(rows))
	for _, r := range rows {
		out = append(out, toOrder(r))
	}
	return out, nil
}

func (b *Backend) PatchStatus(ctx context.Context, id string, status orders.Status) error {
	return mapErr(b.db.SetOrderStatus(ctx, id, string(status)))
}

func (b *Backend) Delete(ctx context.Context, id string) error {
	return mapErr(b.db.DeleteOrder(ctx, id))
}

func (b *Backend) Ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}

func mapErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%v: %w", err, docstore.ErrNotFound)
	}
	return err
}

func toOrder(r *store.Order) orders.Order {
	o := orders.Order{
		ID:        r.ID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Company:   r.Company,
		Country:   r.Country,
		City:      r.City,
		Address1:  r.Address1,
		Address2:  r.Address2,
		Phone:     r.Phone,
		ZipCode:   r.ZipCode,
		Total:     r.Total,
		Discount:  r.Discount,
		OrderDate: r.OrderDate,
		CartItems: make([]orders.CartItem, 0, len(r.CartItems)),
	}
	if r.Status != nil {
		if st, err := orders.ParseStatus(*r.Status); err == nil {
			o.Status = &st
		}
	}
	for _, it := range r.CartItems {
		o.CartItems = append(o.CartItems, orders.CartItem{Name: it.Name, Image: it.Image})
	}
	return o
}

// FromOrder converts a domain order for insertion. cartRefs are product ids.
func FromOrder(o orders.Order, cartRefs []string) *store.Order {
	r := &store.Order{
		ID:        o.ID,
		FirstName: o.FirstName,
		LastName:  o.LastName,
		Email:     o.Email,
		Company:   o.Company,
		Country:   o.Country,
		City:      o.City,
		Address1:  o.Address1,
		Address2:  o.Address2,
		Phone:     o.Phone,
		ZipCode:   o.ZipCode,
		Total:     o.Total,
		Discount:  o.Discount,
		OrderDate: o.OrderDate,
		CartRefs:  cartRefs,
	}
	if o.Status != nil {
		s := string(*o.Status)
		r.Status = &s
	}
	return r
}
