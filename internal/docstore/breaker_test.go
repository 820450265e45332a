package docstore

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	Store
	err error
}

func (f *failingStore) Get(context.Context, string) (Document, error)  { return nil, f.err }
func (f *failingStore) Set(context.Context, string, Document) error    { return f.err }
func (f *failingStore) Update(context.Context, string, Document) error { return f.err }

func TestBreaker_PassesThroughSuccess(t *testing.T) {
	inner := NewMemoryStore()
	b := NewBreakerStore(inner)
	ctx := context.Background()

	require.NoError(t, b.Set(ctx, "products/p1", Document{"name": "Belt"}))

	doc, err := b.Get(ctx, "products/p1")
	require.NoError(t, err)
	assert.Equal(t, "Belt", doc.String("name"))
}

func TestBreaker_NotFoundDoesNotTrip(t *testing.T) {
	b := NewBreakerStore(NewMemoryStore())
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		_, err := b.Get(ctx, "products/missing")
		assert.ErrorIs(t, err, ErrNotFound)
	}
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	boom := errors.New("backend down")
	b := NewBreakerStore(&failingStore{err: boom})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := b.Set(ctx, "products/p1", Document{})
		require.ErrorIs(t, err, boom)
	}

	err := b.Set(ctx, "products/p1", Document{})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}
