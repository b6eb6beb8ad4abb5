package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/machi-events/eventfinder/internal/events"
)

type recordingSink struct {
	mu     sync.Mutex
	got    []events.Activity
	failOn events.Kind
}

func (s *recordingSink) Send(_ context.Context, a events.Activity) error {
	if a.Kind == s.failOn {
		return errors.New("broker down")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, a)
	return nil
}

func (s *recordingSink) Close() error { return nil }

func (s *recordingSink) kinds() []events.Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]events.Kind, 0, len(s.got))
	for _, a := range s.got {
		out = append(out, a.Kind)
	}
	return out
}

func TestWorker_ForwardsInOrderAndSkipsFailures(t *testing.T) {
	bus := events.NewBus(10)
	sink := &recordingSink{failOn: events.KindFavoriteRemoved}
	w := NewWorker(bus, sink, Config{BatchSize: 2, Interval: 5 * time.Millisecond}, zerolog.Nop())

	bus.Publish(events.Activity{Kind: events.KindUserRegistered, UserID: 1})
	bus.Publish(events.Activity{Kind: events.KindFavoriteAdded, UserID: 1, EventID: "evt-1"})
	bus.Publish(events.Activity{Kind: events.KindFavoriteRemoved, UserID: 1, EventID: "evt-1"})
	bus.Publish(events.Activity{Kind: events.KindFavoriteAdded, UserID: 1, EventID: "evt-2"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return len(sink.kinds()) == 3 }, time.Second, 5*time.Millisecond)
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	require.Equal(t, []events.Kind{events.KindUserRegistered, events.KindFavoriteAdded, events.KindFavoriteAdded}, sink.kinds())
}

func TestWorker_FlushesOnShutdown(t *testing.T) {
	bus := events.NewBus(10)
	sink := &recordingSink{}
	w := NewWorker(bus, sink, Config{BatchSize: 10, Interval: time.Hour}, zerolog.Nop())

	bus.Publish(events.Activity{Kind: events.KindUserRegistered, UserID: 9})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, w.Run(ctx), context.Canceled)
	require.Equal(t, []events.Kind{events.KindUserRegistered}, sink.kinds())
}

func TestSubject(t *testing.T) {
	require.Equal(t, "eventfinder.favorite.added", Subject(events.KindFavoriteAdded))
}
