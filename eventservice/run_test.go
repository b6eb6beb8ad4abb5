package eventservice

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/machi-events/eventfinder/internal/config"
)

const searchReply = `{"events":[{"id":"evt-42","title":{"ja":"隅田川花火大会","en":"Sumida River Fireworks"},` +
	`"description":{"ja":"","en":""},"startDate":"2024-07-27","endDate":null,"location":"Sumida River",` +
	`"district":"sumida","imageUrl":""}]}`

// fakeSource answers every chat completion with searchReply.
func fakeSource(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/models":
			_, _ = w.Write([]byte(`{"data":[]}`))
		case "/chat/completions":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"choices": []map[string]interface{}{{"message": map[string]string{"role": "assistant", "content": searchReply}}},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func startApp(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	app, err := New(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	app.Start(ctx)
	t.Cleanup(func() {
		cancel()
		require.NoError(t, app.Close())
	})
	require.NoError(t, app.WaitUntilHealthy(ctx))

	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string) map[string]interface{} {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := map[string]interface{}{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestApp_ServesSeededCatalogAndSearch(t *testing.T) {
	cfg := config.NewForTesting()
	cfg.EventSourceURL = fakeSource(t).URL
	srv := startApp(t, cfg)

	districts := getJSON(t, srv.URL+"/api/districts")
	list := districts["districts"].([]interface{})
	require.NotEmpty(t, list)
	require.EqualValues(t, len(list), districts["count"])

	events := getJSON(t, srv.URL+"/api/events?dateFrom=2024-07-01&dateTo=2024-07-31&district=sumida")
	require.EqualValues(t, 1, events["count"])

	// evt-42 is now cached, so this does not need another source call to succeed
	ev := getJSON(t, srv.URL+"/api/events/evt-42")
	require.Equal(t, "Sumida River", ev["location"])
}

func TestApp_HealthReportsComponents(t *testing.T) {
	cfg := config.NewForTesting()
	cfg.EventSourceURL = fakeSource(t).URL
	srv := startApp(t, cfg)

	require.Eventually(t, func() bool {
		resp, err := http.Get(srv.URL + "/api/health")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		var body struct {
			Status string `json:"status"`
		}
		return json.NewDecoder(resp.Body).Decode(&body) == nil && body.Status == "healthy"
	}, 5*time.Second, 50*time.Millisecond)

	components := getJSON(t, srv.URL+"/api/health")["components"].(map[string]interface{})
	require.Equal(t, true, components["store"])
	require.Equal(t, true, components["eventsource"])
}

func TestApp_SQLitePersistsUsersAcrossRestart(t *testing.T) {
	cfg := config.NewForTesting()
	cfg.DBDriver = "sqlite"
	cfg.SQLitePath = filepath.Join(t.TempDir(), "events.db")
	cfg.EventSourceURL = fakeSource(t).URL

	register := func(srv *httptest.Server) int {
		body := bytes.NewBufferString(`{"username":"alice","password":"secret1"}`)
		resp, err := http.Post(srv.URL+"/api/auth/register", "application/json", body)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	ctx, cancel := context.WithCancel(context.Background())
	app, err := New(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	app.Start(ctx)
	srv := httptest.NewServer(app.Handler())
	require.Equal(t, http.StatusCreated, register(srv))
	srv.Close()
	cancel()
	require.NoError(t, app.Close())

	srv2 := startApp(t, cfg)
	require.Equal(t, http.StatusBadRequest, register(srv2))
}

func TestNew_RejectsUnknownDriver(t *testing.T) {
	cfg := config.NewForTesting()
	cfg.DBDriver = "spanner"
	_, err := New(context.Background(), cfg, zerolog.Nop())
	require.Error(t, err)
}

type ctxTag struct{}

func TestNewHTTPServer_RequestsOutliveShutdownSignal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), ctxTag{}, "app"))
	srv := newHTTPServer(ctx, config.NewForTesting(), http.NotFoundHandler())
	cancel()

	base := srv.BaseContext(nil)
	require.NoError(t, base.Err())
	require.Equal(t, "app", base.Value(ctxTag{}))
}
