package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Session is the server-side record behind a client token.
type Session struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

// SessionManager issues signed session tokens and keeps the sessions they
// refer to. A token is honoured only while its session is live, so Revoke
// invalidates it immediately.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]Session
}

// NewSessionManager signs tokens with secret (HS256) valid for ttl.
func NewSessionManager(secret string, ttl time.Duration) *SessionManager {
	return &SessionManager{
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]Session),
	}
}

// TTL reports the session lifetime.
func (m *SessionManager) TTL() time.Duration { return m.ttl }

// Issue creates a session for userID and returns its signed token.
func (m *SessionManager) Issue(userID int64) (string, Session, error) {
	now := m.now()
	s := Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	claims := jwt.RegisteredClaims{
		ID:        s.ID,
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", Session{}, fmt.Errorf("sign session token: %w", err)
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return token, s, nil
}

// Resolve verifies token and returns its live session.
func (m *SessionManager) Resolve(token string) (Session, error) {
	claims, err := m.parse(token)
	if err != nil {
		return Session{}, err
	}

	m.mu.Lock()
	s, ok := m.sessions[claims.ID]
	m.mu.Unlock()
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	if !m.now().Before(s.ExpiresAt) {
		m.forget(s.ID)
		return Session{}, ErrSessionNotFound
	}
	if strconv.FormatInt(s.UserID, 10) != claims.Subject {
		return Session{}, ErrInvalidToken
	}
	return s, nil
}

// Revoke ends the session named by token. Unknown or invalid tokens are ignored.
func (m *SessionManager) Revoke(token string) {
	claims, err := m.parse(token)
	if err != nil {
		return
	}
	m.forget(claims.ID)
}

// Len reports the number of stored sessions, including expired ones not yet swept.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep drops expired sessions and returns how many were removed.
func (m *SessionManager) Sweep() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if !now.Before(s.ExpiresAt) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// Start sweeps expired sessions every interval until ctx is cancelled.
func (m *SessionManager) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

func (m *SessionManager) forget(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

func (m *SessionManager) parse(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: expired", ErrInvalidToken)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
