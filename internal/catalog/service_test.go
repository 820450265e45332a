package catalog

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/TON618OFF/FactorioStore-sub000/internal/docstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCache struct {
	m        sync.RWMutex
	products map[string]*Product
	err      error
}

func newMockCache() *mockCache {
	return &mockCache{products: make(map[string]*Product)}
}

func (m *mockCache) Get(_ context.Context, id string) (*Product, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if p, ok := m.products[id]; ok {
		return p, nil
	}
	return nil, ErrCacheMiss
}

func (m *mockCache) Set(_ context.Context, p *Product) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.products[p.ID] = p
	return nil
}

func (m *mockCache) Delete(_ context.Context, id string) error {
	m.m.Lock()
	defer m.m.Unlock()
	delete(m.products, id)
	return m.err
}

func (m *mockCache) get(id string) *Product {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.products[id]
}

func newTestService(t *testing.T) (*Service, *Repository, *mockCache, docstore.Store) {
	t.Helper()
	store := docstore.NewMemoryStore()
	repo := NewRepository(store)
	cache := newMockCache()
	return NewService(repo, cache), repo, cache, store
}

func TestServiceGet_MissThenFill(t *testing.T) {
	svc, repo, cache, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, Product{ID: "p1", Name: "Assembler", Price: 1200, Quantity: 4}))

	p, err := svc.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Assembler", p.Name)

	// Cache is filled asynchronously after the miss.
	require.Eventually(t, func() bool {
		return cache.get("p1") != nil
	}, 100*time.Millisecond, 10*time.Millisecond, "product was not set in cache")
}

func TestServiceGet_CacheHitSkipsStore(t *testing.T) {
	svc, _, cache, _ := newTestService(t)
	ctx := context.Background()

	cache.products["p1"] = &Product{ID: "p1", Name: "Cached"}

	p, err := svc.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Cached", p.Name)
}

func TestServiceGet_NotFound(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestServiceGet_CacheErrorFallsThrough(t *testing.T) {
	store := docstore.NewMemoryStore()
	repo := NewRepository(store)
	cache := newMockCache()
	cache.err = fmt.Errorf("redis down")
	svc := NewService(repo, cache)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, Product{ID: "p1", Name: "Assembler"}))

	p, err := svc.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Assembler", p.Name)
}

func TestServiceUpsert_InvalidatesCache(t *testing.T) {
	svc, _, cache, _ := newTestService(t)
	ctx := context.Background()

	cache.products["p1"] = &Product{ID: "p1", Name: "Stale"}
	require.NoError(t, svc.Upsert(ctx, Product{ID: "p1", Name: "Fresh", Price: 100}))

	assert.Nil(t, cache.get("p1"))

	p, err := svc.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Fresh", p.Name)
}

func TestServiceDelete(t *testing.T) {
	svc, repo, cache, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, Product{ID: "p1", Name: "Belt"}))
	cache.products["p1"] = &Product{ID: "p1", Name: "Belt"}

	require.NoError(t, svc.Delete(ctx, "p1"))
	assert.Nil(t, cache.get("p1"))

	_, err := svc.Get(ctx, "p1")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestServiceList_SortedByName(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, Product{ID: "p2", Name: "Belt"}))
	require.NoError(t, repo.Upsert(ctx, Product{ID: "p1", Name: "Assembler"}))

	out, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Assembler", out[0].Name)
	assert.Equal(t, "Belt", out[1].Name)
}

func TestDecrementStock_Clamped(t *testing.T) {
	svc, repo, _, store := newTestService(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, Product{ID: "p1", Name: "Belt", Quantity: 3}))

	require.NoError(t, svc.DecrementStock(ctx, "p1", 5))

	doc, err := store.Get(ctx, "products/p1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), doc.Int64("quantity"), "stock decrement must clamp at zero")
}

func TestDecrementStock_MissingProduct(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	err := svc.DecrementStock(context.Background(), "ghost", 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}
