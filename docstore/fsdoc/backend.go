// Package fsdoc is a docstore backend for Cloud Firestore. Cart items are
// stored as document references into the products collection.
package fsdoc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"orderdesk/docstore"
	"orderdesk/orders"
)

type Config struct {
	ProjectID       string
	CredentialsFile string
	Collection      string
}

type Backend struct {
	client     *firestore.Client
	collection string
}

// Open dials Firestore. An empty CredentialsFile uses application default
// credentials.
func Open(ctx context.Context, cfg Config) (*Backend, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := firestore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore.NewClient failed (project=%s): %w", cfg.ProjectID, err)
	}
	return New(client, cfg.Collection), nil
}

func New(client *firestore.Client, collection string) *Backend {
	if collection == "" {
		collection = "orders"
	}
	return &Backend{client: client, collection: collection}
}

func (b *Backend) Name() string { return "firestore" }

func (b *Backend) Close() error {
	if b.client == nil {
		return nil
	}
	return b.client.Close()
}

func (b *Backend) ordersCol() *firestore.CollectionRef {
	return b.client.Collection(b.collection)
}

func (b *Backend) FetchOrders(ctx context.Context) ([]orders.Order, error) {
	if b.client == nil {
		return nil, errors.New("firestore client is nil")
	}

	it := b.ordersCol().Documents(ctx)
	defer it.Stop()

	var (
		list    []orders.Order
		refsFor [][]*firestore.DocumentRef
		allRefs []*firestore.DocumentRef
	)
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("fetch orders: %w", err)
		}
		o, refs := orderFromData(doc.Ref.ID, doc.Data())
		list = append(list, o)
		refsFor = append(refsFor, refs)
		allRefs = append(allRefs, refs...)
	}

	items, err := b.dereference(ctx, allRefs)
	if err != nil {
		return nil, fmt.Errorf("fetch cart items: %w", err)
	}
	for i := range list {
		list[i].CartItems = resolveCart(refsFor[i], items)
	}
	return list, nil
}

// dereference loads every referenced product in one batched read.
func (b *Backend) dereference(ctx context.Context, refs []*firestore.DocumentRef) (map[string]orders.CartItem, error) {
	out := make(map[string]orders.CartItem, len(refs))
	if len(refs) == 0 {
		return out, nil
	}
	snaps, err := b.client.GetAll(ctx, dedupeRefs(refs))
	if err != nil {
		return nil, err
	}
	for _, snap := range snaps {
		if snap == nil || !snap.Exists() {
			continue
		}
		out[snap.Ref.Path] = cartItemFromData(snap.Data())
	}
	return out, nil
}

func (b *Backend) PatchStatus(ctx context.Context, id string, st orders.Status) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return docstore.ErrNotFound
	}
	_, err := b.ordersCol().Doc(id).Update(ctx, []firestore.Update{
		{Path: "status", Value: string(st)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("patch order %s: %w", id, docstore.ErrNotFound)
		}
		return fmt.Errorf("patch order %s: %w", id, err)
	}
	return nil
}

func (b *Backend) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return docstore.ErrNotFound
	}
	if _, err := b.ordersCol().Doc(id).Delete(ctx, firestore.Exists); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("delete order %s: %w", id, docstore.ErrNotFound)
		}
		return fmt.Errorf("delete order %s: %w", id, err)
	}
	return nil
}

func (b *Backend) Ping(ctx context.Context) error {
	it := b.ordersCol().Limit(1).Documents(ctx)
	defer it.Stop()
	if _, err := it.Next(); err != nil && err != iterator.Done {
		return err
	}
	return nil
}
