// Package reviews stores per-product customer reviews. Reviews are
// append-only; the rating average is computed on read.
package reviews

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/TON618OFF/FactorioStore-sub000/internal/docstore"
)

var ErrInvalidRating = errors.New("rating must be between 1 and 5")

type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"` // 1..5
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type Repository struct {
	store docstore.Store
}

func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

func (r *Repository) Add(ctx context.Context, productID string, review Review) (Review, error) {
	if review.Rating < 1 || review.Rating > 5 {
		return Review{}, ErrInvalidRating
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}

	doc := docstore.Document{
		"user_id":    review.UserID,
		"rating":     int64(review.Rating),
		"text":       review.Text,
		"created_at": review.CreatedAt,
	}
	id, err := r.store.Add(ctx, reviewsCollection(productID), doc)
	if err != nil {
		return Review{}, fmt.Errorf("failed to add review for %s: %w", productID, err)
	}
	review.ID = id
	return review, nil
}

// ListByProduct returns a product's reviews, newest first, plus the average
// rating (0 when there are none).
func (r *Repository) ListByProduct(ctx context.Context, productID string) ([]Review, float64, error) {
	docs, err := r.store.List(ctx, reviewsCollection(productID))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews for %s: %w", productID, err)
	}

	out := make([]Review, 0, len(docs))
	var sum int64
	for id, doc := range docs {
		review := Review{
			ID:        id,
			UserID:    doc.String("user_id"),
			Rating:    int(doc.Int64("rating")),
			Text:      doc.String("text"),
			CreatedAt: doc.Time("created_at"),
		}
		sum += int64(review.Rating)
		out = append(out, review)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	var avg float64
	if len(out) > 0 {
		avg = float64(sum) / float64(len(out))
	}
	return out, avg, nil
}

func reviewsCollection(productID string) string {
	return fmt.Sprintf("reviews/%s/items", productID)
}
