package orders

import (
	"context"
	"testing"
	"time"

	"github.com/TON618OFF/FactorioStore-sub000/internal/cart"
	"github.com/TON618OFF/FactorioStore-sub000/internal/docstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate_AssignsIDAndTimestamp(t *testing.T) {
	repo := NewRepository(docstore.NewMemoryStore())
	ctx := context.Background()

	created, err := repo.Create(ctx, Order{
		UserID:        "alice",
		Email:         "alice@example.com",
		Lines:         []cart.Line{{ProductID: "p1", Name: "Belt", UnitPrice: 100, Quantity: 3}},
		Subtotal:      300,
		Total:         300,
		PaymentMethod: PaymentCash,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.UserID)
	assert.Equal(t, int64(300), got.Total)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, 3, got.Lines[0].Quantity)
	assert.Equal(t, PaymentCash, got.PaymentMethod)
}

func TestCreate_CopiesLines(t *testing.T) {
	repo := NewRepository(docstore.NewMemoryStore())
	ctx := context.Background()

	lines := []cart.Line{{ProductID: "p1", UnitPrice: 100, Quantity: 3}}
	created, err := repo.Create(ctx, Order{UserID: "alice", Lines: lines})
	require.NoError(t, err)

	lines[0].Quantity = 99 // caller keeps mutating its snapshot

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Lines[0].Quantity)
}

func TestListByUser_FiltersAndSortsNewestFirst(t *testing.T) {
	repo := NewRepository(docstore.NewMemoryStore())
	ctx := context.Background()

	old := time.Now().Add(-time.Hour)
	_, err := repo.Create(ctx, Order{UserID: "alice", CreatedAt: old, Total: 100})
	require.NoError(t, err)
	_, err = repo.Create(ctx, Order{UserID: "alice", Total: 200})
	require.NoError(t, err)
	_, err = repo.Create(ctx, Order{UserID: "bob", Total: 999})
	require.NoError(t, err)

	got, err := repo.ListByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(200), got[0].Total)
	assert.Equal(t, int64(100), got[1].Total)
}

func TestListByUser_Empty(t *testing.T) {
	repo := NewRepository(docstore.NewMemoryStore())

	got, err := repo.ListByUser(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, got)
}
