// Package favorites keeps each user's set of favorited products, one
// document per product under the user's favorites collection.
package favorites

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/TON618OFF/FactorioStore-sub000/internal/docstore"
)

type Favorite struct {
	ProductID string    `json:"product_id"`
	AddedAt   time.Time `json:"added_at"`
}

type Repository struct {
	store docstore.Store
}

func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

func (r *Repository) Add(ctx context.Context, uid, productID string) error {
	doc := docstore.Document{
		"product_id": productID,
		"added_at":   time.Now().UTC(),
	}
	if err := r.store.Set(ctx, itemPath(uid, productID), doc); err != nil {
		return fmt.Errorf("failed to add favorite %s: %w", productID, err)
	}
	return nil
}

// Remove tolerates an already-absent favorite; un-hearting twice is fine.
func (r *Repository) Remove(ctx context.Context, uid, productID string) error {
	err := r.store.Delete(ctx, itemPath(uid, productID))
	if err != nil && !errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("failed to remove favorite %s: %w", productID, err)
	}
	return nil
}

func (r *Repository) List(ctx context.Context, uid string) ([]Favorite, error) {
	docs, err := r.store.List(ctx, itemsCollection(uid))
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}

	out := make([]Favorite, 0, len(docs))
	for productID, doc := range docs {
		out = append(out, Favorite{
			ProductID: productID,
			AddedAt:   doc.Time("added_at"),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AddedAt.After(out[j].AddedAt) })
	return out, nil
}

func itemsCollection(uid string) string {
	return fmt.Sprintf("favorites/%s/items", uid)
}

func itemPath(uid, productID string) string {
	return fmt.Sprintf("favorites/%s/items/%s", uid, productID)
}
