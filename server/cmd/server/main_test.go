package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/upstatus/upstatus/pkg/types"
	"github.com/upstatus/upstatus/server/internal/config"
	"github.com/upstatus/upstatus/server/internal/store"
	"github.com/upstatus/upstatus/server/internal/ws"
)

// newServer serves routes() with API-key auth over httptest.
func newServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	t.Setenv("UPSTATUS_TEST_API_KEY", "s3cret")

	st := store.New("unused.json")
	st.Set([]types.SiteSummary{{Name: "Secret", Slug: "secret-site", Status: types.StatusDown}})
	hub := ws.New(st, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	cfg := config.ServerConfig{Auth: config.AuthConfig{Mode: "apikey", KeyEnv: "UPSTATUS_TEST_API_KEY"}}
	srv := httptest.NewServer(routes(cfg, st, hub, nil))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return srv, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/stream"
}

func TestRoutes_SnapshotRequiresKey(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/snapshot")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("snapshot without key: got %d, want 401", resp.StatusCode)
	}
}

func TestRoutes_StreamRequiresKey(t *testing.T) {
	_, wsURL := newServer(t)

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		conn.Close()
		t.Fatal("dial without key succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("dial without key: got resp %v, want 401", resp)
	}

	_, resp, err = websocket.DefaultDialer.Dial(wsURL+"?api_key=wrong", nil)
	if err == nil || resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("dial with wrong key: err %v resp %v, want 401", err, resp)
	}
}

func TestRoutes_StreamAcceptsKey(t *testing.T) {
	_, wsURL := newServer(t)

	tests := []struct {
		name   string
		url    string
		header http.Header
	}{
		{"header", wsURL, http.Header{"X-Api-Key": []string{"s3cret"}}},
		{"query parameter", wsURL + "?api_key=s3cret", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			conn, _, err := websocket.DefaultDialer.Dial(tc.url, tc.header)
			if err != nil {
				t.Fatalf("dial: %v", err)
			}
			defer conn.Close()

			conn.SetReadDeadline(time.Now().Add(2 * time.Second))
			var m ws.Message
			if err := conn.ReadJSON(&m); err != nil {
				t.Fatalf("read: %v", err)
			}
			if m.Event != ws.EventSnapshot || len(m.Data.Sites) != 1 {
				t.Errorf("message: got %+v", m)
			}
		})
	}
}
