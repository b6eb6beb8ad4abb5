package health

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct {
	name    string
	healthy atomic.Int32
}

func (f *fakeChecker) Name() string                               { return f.name }
func (f *fakeChecker) IsHealthy() bool                            { return f.healthy.Load() == 1 }
func (f *fakeChecker) Start(ctx context.Context, _ time.Duration) { /* no-op */ }

type fakePinger struct{ fail atomic.Bool }

func (f *fakePinger) HealthPing(ctx context.Context) error {
	if f.fail.Load() {
		return errors.New("down")
	}
	return nil
}

func TestServiceHealthChecker_Transitions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := &fakeChecker{name: "a"}
	b := &fakeChecker{name: "b"}
	a.healthy.Store(1)
	b.healthy.Store(1)

	svc := NewServiceHealthChecker(zerolog.Nop(), a, b)
	go svc.Start(ctx, 10*time.Millisecond)

	waitTrue(t, func() bool { return svc.IsHealthy() })

	b.healthy.Store(0)
	waitTrue(t, func() bool { return !svc.IsHealthy() })
	require.Equal(t, map[string]bool{"a": true, "b": false}, svc.Components())

	b.healthy.Store(1)
	waitTrue(t, func() bool { return svc.IsHealthy() })
}

func TestPingChecker(t *testing.T) {
	p := &fakePinger{}
	c := NewPingChecker("store", p, zerolog.Nop(), time.Second)
	require.Equal(t, "store", c.Name())
	require.False(t, c.IsHealthy(), "unhealthy before first probe")

	require.True(t, c.Check(context.Background()))
	require.True(t, c.IsHealthy())

	p.fail.Store(true)
	require.False(t, c.Check(context.Background()))
	require.False(t, c.IsHealthy())
}

func TestPingChecker_StartStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := NewPingChecker("src", &fakePinger{}, zerolog.Nop(), 0)

	done := make(chan struct{})
	go func() {
		c.Start(ctx, 10*time.Millisecond)
		close(done)
	}()
	waitTrue(t, c.IsHealthy)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}
}

func waitTrue(t *testing.T, pred func() bool) {
	t.Helper()
	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if pred() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met before timeout")
}
