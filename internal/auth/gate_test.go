package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/machi-events/eventfinder/internal/store"
	"github.com/machi-events/eventfinder/internal/store/memory"
)

func newTestGate(t *testing.T) (*Gate, store.Store) {
	t.Helper()
	st := memory.New()
	return NewGate(NewSessionManager("gate-secret", time.Hour), st.Users(), false, zerolog.Nop()), st
}

func whoAmI(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	_, _ = w.Write([]byte(u.Username))
}

func TestGate_RequireUser(t *testing.T) {
	g, st := newTestGate(t)
	u, err := st.Users().Create(context.Background(), "alice", "hash")
	require.NoError(t, err)

	loginRec := httptest.NewRecorder()
	token, err := g.Login(loginRec, u)
	require.NoError(t, err)
	cookies := loginRec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, CookieName, cookies[0].Name)
	require.True(t, cookies[0].HttpOnly)
	require.Equal(t, token, cookies[0].Value)

	h := g.RequireUser(http.HandlerFunc(whoAmI))

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/auth/me", nil)
		req.AddCookie(cookies[0])
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
		require.Equal(t, "alice", rr.Body.String())
	})

	t.Run("bearer", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("no credentials", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/auth/me", nil))
		require.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("garbage cookie", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/auth/me", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "junk"})
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		require.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("logout revokes", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/auth/logout", nil)
		req.AddCookie(cookies[0])
		rr := httptest.NewRecorder()
		g.Logout(rr, req)
		cleared := rr.Result().Cookies()
		require.Len(t, cleared, 1)
		require.Equal(t, -1, cleared[0].MaxAge)

		req = httptest.NewRequest("GET", "/api/auth/me", nil)
		req.AddCookie(cookies[0])
		rr = httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		require.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestGate_StaleCookieFallsBackToBearer(t *testing.T) {
	g, st := newTestGate(t)
	u, err := st.Users().Create(context.Background(), "alice", "hash")
	require.NoError(t, err)
	token, err := g.Login(httptest.NewRecorder(), u)
	require.NoError(t, err)
	h := g.RequireUser(http.HandlerFunc(whoAmI))

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "stale"})
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "alice", rr.Body.String())

	// a valid cookie still wins over a bad bearer token
	req = httptest.NewRequest("GET", "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	req.Header.Set("Authorization", "Bearer stale")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	req = httptest.NewRequest("GET", "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "stale"})
	req.Header.Set("Authorization", "Bearer also-stale")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestTokensFromRequest(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	require.Empty(t, TokensFromRequest(req))

	req.Header.Set("Authorization", "Bearer b")
	require.Equal(t, []string{"b"}, TokensFromRequest(req))

	req.AddCookie(&http.Cookie{Name: CookieName, Value: "c"})
	require.Equal(t, []string{"c", "b"}, TokensFromRequest(req))

	req = httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "same"})
	req.Header.Set("Authorization", "Bearer same")
	require.Equal(t, []string{"same"}, TokensFromRequest(req))
}

func TestGate_UnknownUserIsUnauthenticated(t *testing.T) {
	g, _ := newTestGate(t)
	token, _, err := g.sessions.Issue(404)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/favorites", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	g.RequireUser(http.HandlerFunc(whoAmI)).ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer abc", "abc", false},
		{"", "", true},
		{"Basic abc", "", true},
		{"Bearer", "", true},
		{"Bearer a b", "", true},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		got, err := ExtractBearerToken(req)
		if tt.wantErr {
			require.Error(t, err, tt.header)
			continue
		}
		require.NoError(t, err)
		require.Equal(t, tt.want, got)
	}
}
