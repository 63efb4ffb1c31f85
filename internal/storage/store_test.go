package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Storefront/internal/storage"
)

func openBackends(t *testing.T) map[string]storage.Store {
	t.Helper()
	ctx := context.Background()

	badgerStore, err := storage.NewBadgerStore(":memory:")
	require.NoError(t, err)

	sqliteStore, err := storage.NewSQLiteStore(ctx, ":memory:")
	require.NoError(t, err)

	stores := map[string]storage.Store{
		storage.DriverMemory: storage.NewMemStore(),
		storage.DriverBadger: badgerStore,
		storage.DriverSQLite: sqliteStore,
	}
	for _, s := range stores {
		s := s
		t.Cleanup(func() { _ = s.Close() })
	}
	return stores
}

func TestStore_GetSet(t *testing.T) {
	ctx := context.Background()

	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Ping(ctx))

			_, ok, err := s.Get(ctx, "cart")
			require.NoError(t, err)
			assert.False(t, ok, "missing key must report absent")

			require.NoError(t, s.Set(ctx, "cart", []byte(`[{"id":"a"}]`)))
			v, ok, err := s.Get(ctx, "cart")
			require.NoError(t, err)
			require.True(t, ok)
			assert.JSONEq(t, `[{"id":"a"}]`, string(v))

			require.NoError(t, s.Set(ctx, "cart", []byte(`[]`)))
			v, ok, err = s.Get(ctx, "cart")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "[]", string(v))
		})
	}
}

func TestStore_EmptyKeyRejected(t *testing.T) {
	ctx := context.Background()

	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			_, _, err := s.Get(ctx, "")
			assert.ErrorIs(t, err, storage.ErrEmptyKey)
			assert.ErrorIs(t, s.Set(ctx, "", []byte("x")), storage.ErrEmptyKey)
		})
	}
}

func TestMemStore_ClosedFailsWrites(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemStore()
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Set(ctx, "cart", []byte("[]")), storage.ErrClosed)
	assert.ErrorIs(t, s.Ping(ctx), storage.ErrClosed)
}

func TestMemStore_ValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemStore()

	buf := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", buf))
	buf[0] = 'z'

	v, _, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(v))
}

func TestScoped_IsolatesNamespaces(t *testing.T) {
	ctx := context.Background()
	base := storage.NewMemStore()

	a := storage.NewScoped(base, "session", "a")
	b := storage.NewScoped(base, "session", "b")
	assert.Equal(t, "session/a/cart", a.Key("cart"))

	require.NoError(t, a.Set(ctx, "cart", []byte("A")))
	require.NoError(t, b.Set(ctx, "cart", []byte("B")))

	v, ok, err := a.Get(ctx, "cart")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "A", string(v))

	raw, ok, err := base.Get(ctx, "session/b/cart")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "B", string(raw))

	require.NoError(t, a.Close())
	assert.NoError(t, base.Ping(ctx), "closing a scope must not close the base")
}

func TestOpen_Drivers(t *testing.T) {
	ctx := context.Background()

	s, err := storage.Open(ctx, "", "")
	require.NoError(t, err)
	assert.IsType(t, &storage.MemStore{}, s)

	s, err = storage.Open(ctx, "SQLite", ":memory:")
	require.NoError(t, err)
	assert.IsType(t, &storage.SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = storage.Open(ctx, "redis", "")
	assert.ErrorIs(t, err, storage.ErrUnknownDriver)
}
