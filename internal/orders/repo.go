package orders

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/TON618OFF/FactorioStore-sub000/internal/cart"
	"github.com/TON618OFF/FactorioStore-sub000/internal/docstore"
)

const collection = "orders"

type Repository struct {
	store docstore.Store
}

func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

// Create writes the order document; the store assigns the order id. The
// lines slice is copied so the stored record stays immutable even if the
// caller keeps mutating its snapshot.
func (r *Repository) Create(ctx context.Context, o Order) (Order, error) {
	o.Lines = append([]cart.Line(nil), o.Lines...)
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}

	id, err := r.store.Add(ctx, collection, o.toDoc())
	if err != nil {
		return Order{}, fmt.Errorf("failed to create order: %w", err)
	}
	o.ID = id
	return o, nil
}

// ListByUser returns the user's order history, newest first.
func (r *Repository) ListByUser(ctx context.Context, uid string) ([]Order, error) {
	docs, err := r.store.List(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	out := make([]Order, 0)
	for id, doc := range docs {
		if doc.String("user_id") != uid {
			continue
		}
		out = append(out, orderFromDoc(id, doc))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *Repository) Get(ctx context.Context, id string) (Order, error) {
	doc, err := r.store.Get(ctx, collection+"/"+id)
	if err != nil {
		return Order{}, fmt.Errorf("failed to get order %s: %w", id, err)
	}
	return orderFromDoc(id, doc), nil
}
