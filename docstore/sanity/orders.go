package sanity

import (
	"context"
	"fmt"

	"orderdesk/docstore"
	"orderdesk/orders"
)

// OrdersQuery is the fixed dashboard projection. cartItems are references
// into product documents and are dereferenced to {name, image}.
const OrdersQuery = `*[_type == 'order']{
  _id,
  firstName,
  lastName,
  email,
  company,
  country,
  city,
  address1,
  address2,
  phone,
  zipCode,
  total,
  discount,
  status,
  orderDate,
  cartItems[] -> { name, image }
}`

// Backend adapts Client to docstore.Backend.
type Backend struct {
	client *Client
}

func New(cfg Config) *Backend {
	return &Backend{client: NewClient(cfg)}
}

func (b *Backend) Name() string { return b.client.Name() }

func (b *Backend) FetchOrders(ctx context.Context) ([]orders.Order, error) {
	var docs []orderDoc
	if err := b.client.Query(ctx, OrdersQuery, &docs); err != nil {
		return nil, fmt.Errorf("fetch orders: %w", err)
	}
	out := make([]orders.Order, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toOrder())
	}
	return out, nil
}

func (b *Backend) PatchStatus(ctx context.Context, id string, status orders.Status) error {
	resp, err := b.client.Mutate(ctx, SetPatch(id, map[string]any{"status": string(status)}))
	if err != nil {
		return fmt.Errorf("patch order %s: %w", id, err)
	}
	// Patching a missing document commits an empty transaction.
	if len(resp.Results) == 0 {
		return fmt.Errorf("patch order %s: %w", id, docstore.ErrNotFound)
	}
	return nil
}

func (b *Backend) Delete(ctx context.Context, id string) error {
	if _, err := b.client.Mutate(ctx, DeleteMutation(id)); err != nil {
		return fmt.Errorf("delete order %s: %w", id, err)
	}
	return nil
}

// Ping runs a trivial query to check credentials and reachability.
func (b *Backend) Ping(ctx context.Context) error {
	var n int
	return b.client.Query(ctx, `count(*[_type == 'order'][0...1])`, &n)
}
