package services

import (
	"context"
	"testing"
	"time"

	"prediction-league/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDocumentStore_Versions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryDocumentStore()
	doc := models.NewLeagueDocument([]string{"A", "B"}, models.DefaultSettings(), time.Now())

	_, _, err := store.Get(ctx, "league")
	assert.ErrorIs(t, err, models.ErrLeagueNotFound)

	_, err = store.Set(ctx, "league", doc, 3)
	assert.ErrorIs(t, err, models.ErrVersionConflict)

	v, err := store.Set(ctx, "league", doc, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	_, err = store.Set(ctx, "league", doc, 0)
	assert.ErrorIs(t, err, models.ErrVersionConflict)

	v, err = store.Set(ctx, "league", doc, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	_, err = store.Set(ctx, "league", doc, 1)
	assert.ErrorIs(t, err, models.ErrVersionConflict)

	v, err = store.Set(ctx, "league", doc, AnyVersion)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	_, err = store.Set(ctx, "league", doc, -2)
	assert.True(t, models.IsValidationError(err))

	v, err = store.Set(ctx, "other", doc, AnyVersion)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestMemoryDocumentStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryDocumentStore()
	doc := models.NewLeagueDocument([]string{"A", "B"}, models.DefaultSettings(), time.Now())
	_, err := store.Set(ctx, "league", doc, 0)
	require.NoError(t, err)

	doc.Teams[0] = "Changed"
	got, version, err := store.Get(ctx, "league")
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
	assert.Equal(t, "A", got.Teams[0])

	got.Teams[1] = "Changed"
	again, _, err := store.Get(ctx, "league")
	require.NoError(t, err)
	assert.Equal(t, "B", again.Teams[1])
}

func TestMemoryDocumentStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewMemoryDocumentStore()
	_, _, err := store.Get(ctx, "league")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, store.Ping(ctx), context.Canceled)
}
