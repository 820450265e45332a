package reviews

import (
	"context"
	"testing"
	"time"

	"github.com/TON618OFF/FactorioStore-sub000/internal/docstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndList(t *testing.T) {
	repo := NewRepository(docstore.NewMemoryStore())
	ctx := context.Background()

	older := time.Now().Add(-time.Hour)
	_, err := repo.Add(ctx, "p1", Review{UserID: "alice", Rating: 5, Text: "great", CreatedAt: older})
	require.NoError(t, err)
	created, err := repo.Add(ctx, "p1", Review{UserID: "bob", Rating: 2, Text: "meh"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	got, avg, err := repo.ListByProduct(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "bob", got[0].UserID, "newest first")
	assert.InDelta(t, 3.5, avg, 0.001)
}

func TestAdd_RejectsBadRating(t *testing.T) {
	repo := NewRepository(docstore.NewMemoryStore())
	ctx := context.Background()

	for _, rating := range []int{0, -1, 6} {
		_, err := repo.Add(ctx, "p1", Review{UserID: "alice", Rating: rating})
		assert.ErrorIs(t, err, ErrInvalidRating)
	}
}

func TestList_EmptyProduct(t *testing.T) {
	repo := NewRepository(docstore.NewMemoryStore())

	got, avg, err := repo.ListByProduct(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, avg)
}
