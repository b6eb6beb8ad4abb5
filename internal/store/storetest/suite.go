package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/machi-events/eventfinder/internal/model"
	"github.com/machi-events/eventfinder/internal/store"
)

// Run exercises the compliance suite against a store.Store implementation.
// makeStore must return a clean, isolated store on every call.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	t.Run("Users", func(t *testing.T) { testUsers(t, makeStore(t)) })
	t.Run("UsersConcurrentDuplicate", func(t *testing.T) { testUsersConcurrentDuplicate(t, makeStore(t)) })
	t.Run("Favorites", func(t *testing.T) { testFavorites(t, makeStore(t)) })
	t.Run("FavoritesConcurrentDuplicate", func(t *testing.T) { testFavoritesConcurrentDuplicate(t, makeStore(t)) })
	t.Run("Districts", func(t *testing.T) { testDistricts(t, makeStore(t)) })
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, err := s.Users().Get(ctx, 999)
	require.ErrorIs(t, err, model.ErrNotFound)
	_, err = s.Users().GetByUsername(ctx, "nobody")
	require.ErrorIs(t, err, model.ErrNotFound)

	alice, err := s.Users().Create(ctx, "alice", "hash-a")
	require.NoError(t, err)
	require.NotZero(t, alice.ID)
	require.Equal(t, "alice", alice.Username)
	require.False(t, alice.CreatedAt.IsZero())

	bob, err := s.Users().Create(ctx, "bob", "hash-b")
	require.NoError(t, err)
	require.Greater(t, bob.ID, alice.ID, "ids increase monotonically")

	got, err := s.Users().GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, alice.ID, got.ID)
	require.Equal(t, "hash-a", got.PasswordHash)

	got, err = s.Users().Get(ctx, bob.ID)
	require.NoError(t, err)
	require.Equal(t, "bob", got.Username)

	_, err = s.Users().Create(ctx, "alice", "other")
	require.ErrorIs(t, err, model.ErrConflict)

	// usernames are case-sensitive as stored
	_, err = s.Users().Create(ctx, "Alice", "hash-c")
	require.NoError(t, err)
}

func testUsersConcurrentDuplicate(t *testing.T, s store.Store) {
	ctx := context.Background()
	const n = 16

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Users().Create(ctx, "racer", fmt.Sprintf("hash-%d", i))
		}(i)
	}
	wg.Wait()

	ok, conflicts := countOutcomes(t, errs)
	require.Equal(t, 1, ok)
	require.Equal(t, n-1, conflicts)
}

func testFavorites(t *testing.T, s store.Store) {
	ctx := context.Background()
	u1 := mustUser(t, s, "fav-user-1")
	u2 := mustUser(t, s, "fav-user-2")

	_, err := s.Favorites().Get(ctx, u1.ID, "evt-42")
	require.ErrorIs(t, err, model.ErrNotFound)

	f, err := s.Favorites().Add(ctx, u1.ID, "evt-42")
	require.NoError(t, err)
	require.Equal(t, u1.ID, f.UserID)
	require.Equal(t, "evt-42", f.EventID)

	got, err := s.Favorites().Get(ctx, u1.ID, "evt-42")
	require.NoError(t, err)
	require.Equal(t, "evt-42", got.EventID)

	_, err = s.Favorites().Add(ctx, u1.ID, "evt-42")
	require.ErrorIs(t, err, model.ErrConflict)

	_, err = s.Favorites().Add(ctx, u1.ID, "evt-7")
	require.NoError(t, err)
	_, err = s.Favorites().Add(ctx, u2.ID, "evt-42")
	require.NoError(t, err, "same event for another user is allowed")

	list, err := s.Favorites().List(ctx, u1.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"evt-42", "evt-7"}, eventIDs(list))

	require.NoError(t, s.Favorites().Remove(ctx, u1.ID, "evt-42"))
	_, err = s.Favorites().Get(ctx, u1.ID, "evt-42")
	require.ErrorIs(t, err, model.ErrNotFound)

	// removing a missing favorite is a no-op
	require.NoError(t, s.Favorites().Remove(ctx, u1.ID, "evt-42"))
	require.NoError(t, s.Favorites().Remove(ctx, u1.ID, "never-added"))

	list, err = s.Favorites().List(ctx, u1.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"evt-7"}, eventIDs(list))

	list, err = s.Favorites().List(ctx, u2.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"evt-42"}, eventIDs(list))
}

func testFavoritesConcurrentDuplicate(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "racer")
	const n = 16

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Favorites().Add(ctx, u.ID, "evt-race")
		}(i)
	}
	wg.Wait()

	ok, conflicts := countOutcomes(t, errs)
	require.Equal(t, 1, ok)
	require.Equal(t, n-1, conflicts)

	list, err := s.Favorites().List(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func testDistricts(t *testing.T, s store.Store) {
	ctx := context.Background()

	list, err := s.Districts().List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)

	// deliberately out of order
	seed := []model.District{
		{Value: "hachioji", Name: model.Localized{Ja: "八王子市", En: "Hachioji"}, Area: "tama", DisplayOrder: 30},
		{Value: "chiyoda", Name: model.Localized{Ja: "千代田区", En: "Chiyoda"}, Area: "special-wards", DisplayOrder: 1},
		{Value: "tachikawa", Name: model.Localized{Ja: "立川市", En: "Tachikawa"}, Area: "tama", DisplayOrder: 31},
		{Value: "minato", Name: model.Localized{Ja: "港区", En: "Minato"}, Area: "special-wards", DisplayOrder: 3},
		{Value: "chuo", Name: model.Localized{Ja: "中央区", En: "Chuo"}, Area: "special-wards", DisplayOrder: 2},
	}
	seeded, err := s.Districts().Seed(ctx, seed)
	require.NoError(t, err)
	require.True(t, seeded)

	list, err = s.Districts().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, len(seed))
	for i := 1; i < len(list); i++ {
		require.LessOrEqual(t, list[i-1].DisplayOrder, list[i].DisplayOrder)
	}
	require.Equal(t, "chiyoda", list[0].Value)
	require.Equal(t, "tachikawa", list[len(list)-1].Value)

	d, err := s.Districts().GetByValue(ctx, "minato")
	require.NoError(t, err)
	require.Equal(t, "港区", d.Name.Ja)
	require.Equal(t, "Minato", d.Name.En)
	require.Equal(t, "special-wards", d.Area)

	_, err = s.Districts().GetByValue(ctx, "atlantis")
	require.ErrorIs(t, err, model.ErrNotFound)

	seeded, err = s.Districts().Seed(ctx, []model.District{{Value: "extra", DisplayOrder: 0}})
	require.NoError(t, err)
	require.False(t, seeded, "seeding a populated catalog is a no-op")
	_, err = s.Districts().GetByValue(ctx, "extra")
	require.ErrorIs(t, err, model.ErrNotFound)
}

func mustUser(t *testing.T, s store.Store, username string) *model.User {
	t.Helper()
	u, err := s.Users().Create(context.Background(), username, "hash")
	require.NoError(t, err)
	return u
}

func eventIDs(list []*model.Favorite) []string {
	out := make([]string, 0, len(list))
	for _, f := range list {
		out = append(out, f.EventID)
	}
	return out
}

func countOutcomes(t *testing.T, errs []error) (ok, conflicts int) {
	t.Helper()
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, model.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	return ok, conflicts
}
