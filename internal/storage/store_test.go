package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Havens-blog/e-cam-web/internal/domain"
	"github.com/Havens-blog/e-cam-web/internal/storage"
	"github.com/Havens-blog/e-cam-web/internal/storage/memory"
	"github.com/Havens-blog/e-cam-web/internal/storage/sqlite"
)

func backends(t *testing.T) map[string]storage.Backend {
	t.Helper()
	sq, err := sqlite.New(":memory:")
	require.NoError(t, err)
	return map[string]storage.Backend{
		"memory": memory.New(),
		"sqlite": sq,
	}
}

func TestStore_Credentials(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := storage.NewStore(backend)
			defer store.Close()

			ac, err := store.AuthContext(ctx)
			require.NoError(t, err)
			assert.Equal(t, domain.AuthContext{TenantID: storage.DefaultTenantID}, ac)

			require.NoError(t, store.SetToken(ctx, "tok"))
			require.NoError(t, store.SetTenantID(ctx, "acme"))

			ac, err = store.AuthContext(ctx)
			require.NoError(t, err)
			assert.Equal(t, domain.AuthContext{Token: "tok", TenantID: "acme"}, ac)

			require.NoError(t, store.ClearToken(ctx))
			token, err := store.Token(ctx)
			require.NoError(t, err)
			assert.Empty(t, token)
		})
	}
}

func TestStore_PrefixedKeys(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	store := storage.NewStore(backend, storage.WithPrefix("x_"), storage.WithExpiry(time.Hour))

	require.NoError(t, store.SetToken(ctx, "tok"))
	v, ok, err := backend.Get(ctx, "x_token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok", string(v))

	_, ok, _ = backend.Get(ctx, "cam_token")
	assert.False(t, ok)
}

func TestStore_Snapshots(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := storage.NewStore(backend)
			defer store.Close()

			type user struct {
				Name string `json:"name"`
			}
			var got user
			ok, err := store.LoadSnapshot(ctx, storage.SnapshotUser, &got)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.SaveSnapshot(ctx, storage.SnapshotUser, user{Name: "admin"}))
			ok, err = store.LoadSnapshot(ctx, storage.SnapshotUser, &got)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "admin", got.Name)

			require.NoError(t, store.DeleteSnapshot(ctx, storage.SnapshotUser))
			ok, err = store.LoadSnapshot(ctx, storage.SnapshotUser, &got)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}
