package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestManager(ttl time.Duration) (*SessionManager, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	m := NewSessionManager("test-secret", ttl)
	m.now = clock.Now
	return m, clock
}

func TestSessionManager_IssueResolveRevoke(t *testing.T) {
	m, _ := newTestManager(time.Hour)

	token, s, err := m.Issue(7)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, int64(7), s.UserID)

	got, err := m.Resolve(token)
	require.NoError(t, err)
	require.Equal(t, s.ID, got.ID)

	m.Revoke(token)
	_, err = m.Resolve(token)
	require.ErrorIs(t, err, ErrSessionNotFound)
	require.Equal(t, 0, m.Len())
}

func TestSessionManager_RejectsBadTokens(t *testing.T) {
	m, _ := newTestManager(time.Hour)
	token, _, err := m.Issue(1)
	require.NoError(t, err)

	other := NewSessionManager("other-secret", time.Hour)
	other.now = m.now
	foreign, _, err := other.Issue(1)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{ID: "x", Subject: "1"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	own := strings.Split(token, ".")
	spliced := strings.Join([]string{own[0], strings.Split(foreign, ".")[1], own[2]}, ".")

	for name, tok := range map[string]string{
		"garbage":      "not-a-token",
		"empty":        "",
		"wrong secret": foreign,
		"tampered":     spliced,
		"alg none":     unsigned,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.Resolve(tok)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestSessionManager_Expiry(t *testing.T) {
	m, clock := newTestManager(time.Minute)
	token, _, err := m.Issue(1)
	require.NoError(t, err)

	clock.t = clock.t.Add(2 * time.Minute)
	_, err = m.Resolve(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionManager_Sweep(t *testing.T) {
	m, clock := newTestManager(time.Minute)
	_, _, err := m.Issue(1)
	require.NoError(t, err)
	clock.t = clock.t.Add(30 * time.Second)
	live, _, err := m.Issue(2)
	require.NoError(t, err)
	require.Equal(t, 2, m.Len())

	clock.t = clock.t.Add(45 * time.Second)
	require.Equal(t, 1, m.Sweep())
	require.Equal(t, 1, m.Len())
	_, err = m.Resolve(live)
	require.NoError(t, err)
}

func TestSessionManager_StartStops(t *testing.T) {
	m, _ := newTestManager(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Start(ctx, 5*time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return")
	}
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(4)
	hash, err := h.Hash("secret1")
	require.NoError(t, err)
	require.NotEqual(t, "secret1", hash)

	require.NoError(t, h.Verify(hash, "secret1"))
	require.ErrorIs(t, h.Verify(hash, "wrongpass"), ErrPasswordMismatch)

	require.Equal(t, 10, NewBcryptHasher(0).Cost)
}
