package eventcache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/machi-events/eventfinder/internal/model"
)

func ev(id, title string) model.Event {
	return model.Event{ID: id, Title: model.Localized{En: title}, StartDate: "2024-05-01"}
}

func TestCache_PutGetOverwrite(t *testing.T) {
	c := New(10, time.Hour)

	_, ok := c.Get("evt-1")
	require.False(t, ok)

	c.Put(ev("evt-1", "first"))
	got, ok := c.Get("evt-1")
	require.True(t, ok)
	require.Equal(t, "first", got.Title.En)

	c.PutAll([]model.Event{ev("evt-1", "second"), ev("evt-2", "other"), ev("evt-1", "third")})
	got, ok = c.Get("evt-1")
	require.True(t, ok)
	require.Equal(t, "third", got.Title.En, "last write wins")
	require.Equal(t, 2, c.Len())
}

func TestCache_IgnoresEmptyID(t *testing.T) {
	c := New(10, time.Hour)
	c.Put(ev("", "nameless"))
	require.Equal(t, 0, c.Len())
}

func TestCache_BoundedEvictsOldest(t *testing.T) {
	c := New(3, time.Hour)
	for i := 0; i < 5; i++ {
		c.Put(ev(fmt.Sprintf("evt-%d", i), "x"))
	}
	require.Equal(t, 3, c.Len())
	_, ok := c.Get("evt-0")
	require.False(t, ok)
	_, ok = c.Get("evt-4")
	require.True(t, ok)
}

func TestCache_Expires(t *testing.T) {
	c := New(10, 20*time.Millisecond)
	c.Put(ev("evt-1", "short-lived"))
	_, ok := c.Get("evt-1")
	require.True(t, ok)

	require.Eventually(t, func() bool {
		_, ok := c.Get("evt-1")
		return !ok
	}, time.Second, 10*time.Millisecond)
}
