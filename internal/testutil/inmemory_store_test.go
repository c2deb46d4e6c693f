package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/devicedesk/devicedesk/internal/domain/client"
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(ctx context.Context, id, name string, created time.Time) *client.Client {
	c := &client.Client{ID: id, Name: name, BaseModel: types.GetDefaultBaseModel(ctx)}
	c.CreatedAt = created
	return c
}

func TestInMemoryClientStore(t *testing.T) {
	ctx := types.SetTenantID(context.Background(), DefaultTenantID)
	other := types.SetTenantID(context.Background(), "tenant_other")
	store := NewInMemoryClientStore()

	base := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Create(ctx, newClient(ctx, "cli_a", "Acme", base)))
	require.NoError(t, store.Create(ctx, newClient(ctx, "cli_b", "Globex", base.Add(time.Hour))))
	require.NoError(t, store.Create(ctx, newClient(ctx, "cli_c", "Initech", base.Add(2*time.Hour))))
	require.NoError(t, store.Create(other, newClient(other, "cli_x", "Other tenant", base)))

	err := store.Create(ctx, newClient(ctx, "cli_a", "Duplicate", base))
	assert.True(t, ierr.IsAlreadyExists(err))

	t.Run("list is tenant scoped and newest first", func(t *testing.T) {
		items, err := store.List(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"cli_c", "cli_b", "cli_a"}, lo.Map(items, func(c *client.Client, _ int) string { return c.ID }))
	})

	t.Run("pagination", func(t *testing.T) {
		f := types.NewClientFilter()
		f.Limit = lo.ToPtr(2)
		f.Offset = lo.ToPtr(1)
		items, err := store.List(ctx, f)
		require.NoError(t, err)
		assert.Equal(t, []string{"cli_b", "cli_a"}, lo.Map(items, func(c *client.Client, _ int) string { return c.ID }))

		count, err := store.Count(ctx, f)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})

	t.Run("search", func(t *testing.T) {
		f := types.NewClientFilter()
		f.Search = lo.ToPtr("GLOB")
		items, err := store.List(ctx, f)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "cli_b", items[0].ID)
	})

	t.Run("other tenant cannot read", func(t *testing.T) {
		_, err := store.Get(other, "cli_a")
		assert.True(t, ierr.IsNotFound(err))
	})

	t.Run("returned rows are copies", func(t *testing.T) {
		c, err := store.Get(ctx, "cli_a")
		require.NoError(t, err)
		c.Name = "Changed"
		again, err := store.Get(ctx, "cli_a")
		require.NoError(t, err)
		assert.Equal(t, "Acme", again.Name)
	})

	t.Run("delete is soft", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "cli_a"))
		_, err := store.Get(ctx, "cli_a")
		assert.True(t, ierr.IsNotFound(err))

		count, err := store.Count(ctx, types.NewNoLimitClientFilter())
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})
}

func TestMockPostgresClient_WithTx(t *testing.T) {
	db := NewMockPostgresClient()
	ctx := context.Background()

	err := db.LockKey(ctx, "outside")
	assert.Error(t, err)

	err = db.WithTx(ctx, func(txCtx context.Context) error {
		require.NoError(t, db.LockKey(txCtx, "k1"))
		return db.WithTx(txCtx, func(inner context.Context) error {
			return db.LockKey(inner, "k2")
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 1, db.TxCount)
	assert.Equal(t, []string{"k1", "k2"}, db.LockedKeys())
}
