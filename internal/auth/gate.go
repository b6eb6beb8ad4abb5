package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/machi-events/eventfinder/internal/api/respond"
	"github.com/machi-events/eventfinder/internal/model"
	"github.com/machi-events/eventfinder/internal/store"
)

// CookieName carries the session token in browsers.
const CookieName = "eventfinder_session"

type ctxKey struct{}

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// UserFromContext returns the user placed by Gate.RequireUser.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(ctxKey{}).(*model.User)
	return u, ok && u != nil
}

// ExtractBearerToken extracts the token from an "Authorization: Bearer <token>" header.
func ExtractBearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("missing Authorization header")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", errors.New("invalid Authorization header format, expected 'Bearer <token>'")
	}
	return parts[1], nil
}

// TokensFromRequest returns the session cookie and the bearer token, in that
// order, skipping whichever is absent.
func TokensFromRequest(r *http.Request) []string {
	var out []string
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		out = append(out, c.Value)
	}
	if tok, err := ExtractBearerToken(r); err == nil && (len(out) == 0 || tok != out[0]) {
		out = append(out, tok)
	}
	return out
}

// Gate authenticates requests against the session manager and the identity store.
type Gate struct {
	sessions     *SessionManager
	users        store.Users
	cookieSecure bool
	log          zerolog.Logger
}

func NewGate(sessions *SessionManager, users store.Users, cookieSecure bool, log zerolog.Logger) *Gate {
	return &Gate{sessions: sessions, users: users, cookieSecure: cookieSecure, log: log}
}

// Authenticate resolves the request's credentials to a user. A cookie that
// no longer resolves does not hide a valid bearer token. Any failure means
// the request is unauthenticated.
func (g *Gate) Authenticate(r *http.Request) (*model.User, error) {
	tokens := TokensFromRequest(r)
	if len(tokens) == 0 {
		return nil, ErrNoCredentials
	}
	var err error
	for _, token := range tokens {
		var u *model.User
		if u, err = g.resolve(r.Context(), token); err == nil {
			return u, nil
		}
		if !isAuthFailure(err) {
			return nil, err
		}
	}
	return nil, err
}

func (g *Gate) resolve(ctx context.Context, token string) (*model.User, error) {
	s, err := g.sessions.Resolve(token)
	if err != nil {
		return nil, err
	}
	u, err := g.users.Get(ctx, s.UserID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %d no longer exists", ErrSessionNotFound, s.UserID)
		}
		return nil, err
	}
	return u, nil
}

// RequireUser rejects unauthenticated requests with 401 before the wrapped
// handler runs.
func (g *Gate) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := g.Authenticate(r)
		if err != nil {
			if !isAuthFailure(err) {
				g.log.Error().Err(err).Str("path", r.URL.Path).Msg("session lookup failed")
				respond.WriteInternalError(w, "internal error")
				return
			}
			g.log.Debug().Err(err).Str("path", r.URL.Path).Msg("unauthenticated request")
			respond.WriteUnauthorized(w, "not authenticated")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
	})
}

// Login establishes a session for u and sets the session cookie. It returns
// the signed token for non-browser clients.
func (g *Gate) Login(w http.ResponseWriter, u *model.User) (string, error) {
	token, s, err := g.sessions.Issue(u.ID)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  s.ExpiresAt,
		MaxAge:   int(time.Until(s.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   g.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}

// Logout revokes every session the request presents and clears the cookie.
func (g *Gate) Logout(w http.ResponseWriter, r *http.Request) {
	for _, token := range TokensFromRequest(r) {
		g.sessions.Revoke(token)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   g.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func isAuthFailure(err error) bool {
	return errors.Is(err, ErrNoCredentials) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrSessionNotFound)
}
