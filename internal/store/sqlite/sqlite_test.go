package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/machi-events/eventfinder/internal/store"
	"github.com/machi-events/eventfinder/internal/store/storetest"
)

func makeSQLiteStore(t *testing.T) store.Store {
	t.Helper()
	st, err := Open(context.Background(), filepath.Join(t.TempDir(), "eventfinder.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestSQLiteStore_Compliance(t *testing.T) {
	storetest.Run(t, makeSQLiteStore)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "eventfinder.db")

	st, err := Open(ctx, path)
	require.NoError(t, err)
	u, err := st.Users().Create(ctx, "alice", "hash")
	require.NoError(t, err)
	_, err = st.Favorites().Add(ctx, u.ID, "evt-1")
	require.NoError(t, err)
	require.NoError(t, st.Close())

	st, err = Open(ctx, path)
	require.NoError(t, err)
	defer func() { _ = st.Close() }()

	got, err := st.Users().GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.Equal(t, u.CreatedAt, got.CreatedAt)

	fav, err := st.Favorites().Get(ctx, u.ID, "evt-1")
	require.NoError(t, err)
	require.Equal(t, "evt-1", fav.EventID)
	require.NoError(t, st.HealthPing(ctx))
}
