package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"event-portal/internal/model"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("save then load", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Save(ctx, "sid-1", model.KindAdmin, "tok", `{"_id":"a1"}`))

		entry, ok, err := store.Load(ctx, "sid-1", model.KindAdmin)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "tok", entry.Token)
		assert.Equal(t, `{"_id":"a1"}`, entry.Principal)
	})

	t.Run("absent session is not an error", func(t *testing.T) {
		store := NewMemoryStore()
		_, ok, err := store.Load(ctx, "sid-1", model.KindAdmin)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("kinds are independent", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Save(ctx, "sid-1", model.KindAdmin, "admin-tok", `{"_id":"a1"}`))
		require.NoError(t, store.Save(ctx, "sid-1", model.KindHoster, "hoster-tok", `{"_id":"h1","status":"approved"}`))

		require.NoError(t, store.Clear(ctx, "sid-1", model.KindAdmin))

		_, ok, err := store.Load(ctx, "sid-1", model.KindAdmin)
		require.NoError(t, err)
		assert.False(t, ok)

		entry, ok, err := store.Load(ctx, "sid-1", model.KindHoster)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "hoster-tok", entry.Token)
	})

	t.Run("sids are independent", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Save(ctx, "sid-1", model.KindAdmin, "tok-1", `{"_id":"a1"}`))

		_, ok, err := store.Load(ctx, "sid-2", model.KindAdmin)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("save overwrites", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Save(ctx, "sid-1", model.KindAdmin, "old", `{"_id":"a1"}`))
		require.NoError(t, store.Save(ctx, "sid-1", model.KindAdmin, "new", `{"_id":"a2"}`))

		entry, ok, err := store.Load(ctx, "sid-1", model.KindAdmin)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "new", entry.Token)
		assert.Equal(t, `{"_id":"a2"}`, entry.Principal)
	})

	t.Run("clear is idempotent", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Clear(ctx, "sid-1", model.KindHoster))
		require.NoError(t, store.Clear(ctx, "sid-1", model.KindHoster))
	})
}
