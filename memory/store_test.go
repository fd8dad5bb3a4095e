package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crashkit/delivery"
)

func TestEnqueuePeekFIFO(t *testing.T) {
	ctx := context.Background()
	store := New()

	first, err := store.Enqueue(ctx, delivery.ResourceErrors, []byte("first"))
	require.NoError(t, err)
	_, err = store.Enqueue(ctx, delivery.ResourceErrors, []byte("second"))
	require.NoError(t, err)

	payload, err := store.Peek(ctx, delivery.ResourceErrors)
	require.NoError(t, err)
	assert.Equal(t, first, payload.ID)
	assert.Equal(t, []byte("first"), payload.Body)

	require.NoError(t, store.Remove(ctx, first))

	payload, err = store.Peek(ctx, delivery.ResourceErrors)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), payload.Body)
}

func TestPeekEmpty(t *testing.T) {
	store := New()

	_, err := store.Peek(context.Background(), delivery.ResourceErrors)
	require.ErrorIs(t, err, delivery.ErrNoPayloads)
}

func TestEnqueueEmptyBody(t *testing.T) {
	store := New()

	_, err := store.Enqueue(context.Background(), delivery.ResourceErrors, nil)
	require.ErrorIs(t, err, delivery.ErrBodyRequired)
}

func TestEnqueueCopiesBody(t *testing.T) {
	ctx := context.Background()
	store := New()

	body := []byte("original")
	_, err := store.Enqueue(ctx, delivery.ResourceErrors, body)
	require.NoError(t, err)
	body[0] = 'X'

	payload, err := store.Peek(ctx, delivery.ResourceErrors)
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), payload.Body)
}

func TestRemoveIdempotent(t *testing.T) {
	ctx := context.Background()
	store := New()

	id, err := store.Enqueue(ctx, delivery.ResourceErrors, []byte("payload"))
	require.NoError(t, err)

	require.NoError(t, store.Remove(ctx, id))
	require.NoError(t, store.Remove(ctx, id))
}

func TestUpdateMissing(t *testing.T) {
	ctx := context.Background()
	store := New()

	id, err := store.Enqueue(ctx, delivery.ResourceErrors, []byte("payload"))
	require.NoError(t, err)
	require.NoError(t, store.Remove(ctx, id))

	retries := 1
	err = store.Update(ctx, id, delivery.PayloadUpdate{Retries: &retries})
	require.ErrorIs(t, err, delivery.ErrNotFound)
}

func TestUpdateRetriesMonotonic(t *testing.T) {
	ctx := context.Background()
	store := New()

	id, err := store.Enqueue(ctx, delivery.ResourceErrors, []byte("payload"))
	require.NoError(t, err)

	three := 3
	require.NoError(t, store.Update(ctx, id, delivery.PayloadUpdate{Retries: &three}))
	one := 1
	require.NoError(t, store.Update(ctx, id, delivery.PayloadUpdate{Retries: &one}))

	payload, err := store.Peek(ctx, delivery.ResourceErrors)
	require.NoError(t, err)
	assert.Equal(t, 3, payload.Retries)
}

func TestListCreationOrder(t *testing.T) {
	ctx := context.Background()
	store := New()

	var want []delivery.ID
	for i := 0; i < 5; i++ {
		id, err := store.Enqueue(ctx, delivery.ResourceSessions, []byte("payload"))
		require.NoError(t, err)
		want = append(want, id)
	}

	ids, err := store.List(ctx, delivery.ResourceSessions)
	require.NoError(t, err)
	assert.Equal(t, want, ids)
}

func TestResourcesIsolated(t *testing.T) {
	ctx := context.Background()
	store := New()

	_, err := store.Enqueue(ctx, delivery.ResourceErrors, []byte("error"))
	require.NoError(t, err)

	_, err = store.Peek(ctx, delivery.ResourceSessions)
	require.ErrorIs(t, err, delivery.ErrNoPayloads)
}
