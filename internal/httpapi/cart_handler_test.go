package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/TON618OFF/FactorioStore-sub000/internal/cart"
	"github.com/TON618OFF/FactorioStore-sub000/internal/catalog"
	"github.com/TON618OFF/FactorioStore-sub000/internal/docstore"
	"github.com/TON618OFF/FactorioStore-sub000/internal/identity"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// missCache never hits so the service always reads through to the store.
type missCache struct{}

func (missCache) Get(ctx context.Context, id string) (*catalog.Product, error) {
	return nil, catalog.ErrCacheMiss
}
func (missCache) Set(ctx context.Context, p *catalog.Product) error { return nil }
func (missCache) Delete(ctx context.Context, id string) error       { return nil }

type cartFixture struct {
	store    *docstore.MemoryStore
	registry *cart.Registry
	handler  *CartHandler
}

func newCartFixture(t *testing.T) *cartFixture {
	t.Helper()

	store := docstore.NewMemoryStore()
	registry := cart.NewRegistry(store)
	t.Cleanup(registry.Close)

	catalogSvc := catalog.NewService(catalog.NewRepository(store), missCache{})
	require.NoError(t, store.Set(context.Background(), "products/p1", docstore.Document{
		"name":     "Assembler",
		"price":    int64(500),
		"image":    "assembler.png",
		"quantity": int64(10),
	}))

	return &cartFixture{
		store:    store,
		registry: registry,
		handler:  NewCartHandler(registry, catalogSvc, 5*time.Second),
	}
}

func authedIdentity(uid string) identity.Identity {
	return identity.Identity{UID: uid, Email: uid + "@example.com"}
}

func authed(r *http.Request, uid string) *http.Request {
	ctx := identity.WithIdentity(r.Context(), authedIdentity(uid))
	return r.WithContext(ctx)
}

func TestAddItem_Success(t *testing.T) {
	f := newCartFixture(t)

	body, _ := json.Marshal(AddItemRequestDTO{ProductID: "p1", Quantity: 2})
	request := authed(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewReader(body)), "u1")
	recorder := httptest.NewRecorder()

	f.handler.AddItem(recorder, request)

	require.Equal(t, http.StatusCreated, recorder.Code)

	var resp CartResponseDTO
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, "p1", resp.Lines[0].ProductID)
	assert.Equal(t, "Assembler", resp.Lines[0].Name)
	assert.Equal(t, int64(500), resp.Lines[0].UnitPrice)
	assert.Equal(t, 2, resp.Lines[0].Quantity)
	assert.Equal(t, int64(1000), resp.Subtotal)
}

func TestAddItem_HydratesFromCatalogNotClient(t *testing.T) {
	f := newCartFixture(t)

	// The DTO has no price field at all; a crafted body must not matter.
	body := []byte(`{"product_id":"p1","quantity":1,"unit_price":1,"name":"free"}`)
	request := authed(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewReader(body)), "u1")
	recorder := httptest.NewRecorder()

	f.handler.AddItem(recorder, request)

	require.Equal(t, http.StatusCreated, recorder.Code)
	var resp CartResponseDTO
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, int64(500), resp.Lines[0].UnitPrice)
	assert.Equal(t, "Assembler", resp.Lines[0].Name)
}

func TestAddItem_UnknownProduct(t *testing.T) {
	f := newCartFixture(t)

	body, _ := json.Marshal(AddItemRequestDTO{ProductID: "ghost", Quantity: 1})
	request := authed(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewReader(body)), "u1")
	recorder := httptest.NewRecorder()

	f.handler.AddItem(recorder, request)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestAddItem_InvalidQuantity(t *testing.T) {
	f := newCartFixture(t)

	for _, qty := range []int{0, -3, 100} {
		body, _ := json.Marshal(AddItemRequestDTO{ProductID: "p1", Quantity: qty})
		request := authed(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewReader(body)), "u1")
		recorder := httptest.NewRecorder()

		f.handler.AddItem(recorder, request)

		assert.Equal(t, http.StatusBadRequest, recorder.Code, "quantity %d", qty)
	}
}

func TestAddItem_Unauthenticated(t *testing.T) {
	f := newCartFixture(t)

	body, _ := json.Marshal(AddItemRequestDTO{ProductID: "p1", Quantity: 1})
	request := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewReader(body))
	recorder := httptest.NewRecorder()

	f.handler.AddItem(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestGetCart_Empty(t *testing.T) {
	f := newCartFixture(t)

	request := authed(httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil), "u1")
	recorder := httptest.NewRecorder()

	f.handler.GetCart(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	var resp CartResponseDTO
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Empty(t, resp.Lines)
	assert.Zero(t, resp.Subtotal)
}

func TestRemoveItem_DeletesLine(t *testing.T) {
	f := newCartFixture(t)

	body, _ := json.Marshal(AddItemRequestDTO{ProductID: "p1", Quantity: 2})
	addReq := authed(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewReader(body)), "u1")
	f.handler.AddItem(httptest.NewRecorder(), addReq)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("productID", "p1")
	request := authed(httptest.NewRequest(http.MethodDelete, "/api/v1/cart/items/p1", nil), "u1")
	request = request.WithContext(context.WithValue(request.Context(), chi.RouteCtxKey, rctx))
	recorder := httptest.NewRecorder()

	f.handler.RemoveItem(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	var resp CartResponseDTO
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Empty(t, resp.Lines)
}

func TestHeaderAuthMiddleware_PassesIdentity(t *testing.T) {
	var got identity.Identity
	var ok bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = identity.FromContext{}.Current(r.Context())
	})

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("X-User-ID", "u42")
	request.Header.Set("X-User-Email", "u42@example.com")
	HeaderAuthMiddleware(next).ServeHTTP(httptest.NewRecorder(), request)

	require.True(t, ok)
	assert.Equal(t, "u42", got.UID)
	assert.Equal(t, "u42@example.com", got.Email)
}

func TestHeaderAuthMiddleware_AnonymousPassesThrough(t *testing.T) {
	var ok bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = identity.FromContext{}.Current(r.Context())
	})

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	HeaderAuthMiddleware(next).ServeHTTP(httptest.NewRecorder(), request)

	assert.False(t, ok)
}
