// Package docstore defines the contract between the dashboard and the hosted
// document database that owns order records.
package docstore

import (
	"context"
	"errors"

	"orderdesk/orders"
)

// ErrNotFound is returned by backends when a mutation targets an unknown id.
var ErrNotFound = errors.New("docstore: document not found")

// Backend is a document store holding order documents.
type Backend interface {
	// FetchOrders runs the fixed order projection, cart items dereferenced.
	FetchOrders(ctx context.Context) ([]orders.Order, error)
	// PatchStatus sets the status field of one order and commits.
	PatchStatus(ctx context.Context, id string, status orders.Status) error
	// Delete removes one order document.
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Name() string
}
