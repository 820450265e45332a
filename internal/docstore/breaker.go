package docstore

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerStore wraps a Store with a circuit breaker so a flapping remote
// backend fails fast instead of stalling every cart operation. ErrNotFound
// is an answer, not a failure, and never trips the breaker.
type BreakerStore struct {
	inner Store
	cb    *gobreaker.CircuitBreaker[any]
}

func NewBreakerStore(inner Store) *BreakerStore {
	settings := gobreaker.Settings{
		Name:        "docstore",
		MaxRequests: 3,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("docstore: circuit breaker %s: %s -> %s", name, from, to)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidPath)
		},
	}
	return &BreakerStore{inner: inner, cb: gobreaker.NewCircuitBreaker[any](settings)}
}

func (b *BreakerStore) Get(ctx context.Context, path string) (Document, error) {
	v, err := b.cb.Execute(func() (any, error) {
		return b.inner.Get(ctx, path)
	})
	if err != nil {
		return nil, err
	}
	return v.(Document), nil
}

func (b *BreakerStore) Set(ctx context.Context, path string, fields Document) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.inner.Set(ctx, path, fields)
	})
	return err
}

func (b *BreakerStore) Update(ctx context.Context, path string, fields Document) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.inner.Update(ctx, path, fields)
	})
	return err
}

func (b *BreakerStore) Delete(ctx context.Context, path string) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.inner.Delete(ctx, path)
	})
	return err
}

func (b *BreakerStore) Add(ctx context.Context, collection string, fields Document) (string, error) {
	v, err := b.cb.Execute(func() (any, error) {
		return b.inner.Add(ctx, collection, fields)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (b *BreakerStore) List(ctx context.Context, collection string) (map[string]Document, error) {
	v, err := b.cb.Execute(func() (any, error) {
		return b.inner.List(ctx, collection)
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]Document), nil
}

// Subscribe passes through: the subscription's internal retry loop is owned
// by the backend, not the breaker.
func (b *BreakerStore) Subscribe(collection string, fn func(map[string]Document, error)) (Subscription, error) {
	return b.inner.Subscribe(collection, fn)
}
