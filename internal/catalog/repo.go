package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/TON618OFF/FactorioStore-sub000/internal/docstore"
)

var ErrProductNotFound = errors.New("product not found")

// Repository reads and writes product documents.
type Repository struct {
	store docstore.Store
}

func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

func (r *Repository) Get(ctx context.Context, id string) (*Product, error) {
	doc, err := r.store.Get(ctx, productPath(id))
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	p := productFromDoc(id, doc)
	return &p, nil
}

func (r *Repository) List(ctx context.Context) ([]Product, error) {
	docs, err := r.store.List(ctx, "products")
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	out := make([]Product, 0, len(docs))
	for id, doc := range docs {
		out = append(out, productFromDoc(id, doc))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Upsert creates or replaces a product document (admin back-office).
func (r *Repository) Upsert(ctx context.Context, p Product) error {
	if p.ID == "" {
		return fmt.Errorf("product id is required")
	}
	if err := r.store.Set(ctx, productPath(p.ID), p.toDoc()); err != nil {
		return fmt.Errorf("failed to upsert product %s: %w", p.ID, err)
	}
	return nil
}

// Delete removes a product document (admin back-office).
func (r *Repository) Delete(ctx context.Context, id string) error {
	err := r.store.Delete(ctx, productPath(id))
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrProductNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	return nil
}

// DecrementStock issues the post-order stock deduction for one product,
// clamped so the resulting quantity is never negative. The read and the
// write are two separate remote calls with no compare-and-set: two
// concurrent settlements can both observe the pre-decrement quantity and
// oversell. That matches the store's per-document write model and is a
// documented limitation, not a guarantee.
func (r *Repository) DecrementStock(ctx context.Context, id string, qty int) error {
	doc, err := r.store.Get(ctx, productPath(id))
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to read stock for %s: %w", id, err)
	}

	current := doc.Int64("quantity")
	next := current - int64(qty)
	if next < 0 {
		next = 0
	}

	if err := r.store.Update(ctx, productPath(id), docstore.Document{"quantity": next}); err != nil {
		return fmt.Errorf("failed to write stock for %s: %w", id, err)
	}
	return nil
}
