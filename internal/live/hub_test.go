package live

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T, opts ...HubOption) (*Hub, *httptest.Server) {
	t.Helper()

	hub := NewHub(opts...)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := hub.Serve(w, r, r.URL.Query().Get("session")); err != nil {
			t.Logf("upgrade failed: %v", err)
		}
	}))

	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?session=" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestNotifyReachesOnlyThatSession(t *testing.T) {
	var observed atomic.Int64
	hub, srv := startHub(t, WithConnectionObserver(func(delta int64) { observed.Add(delta) }))

	alice := dial(t, srv, "alice")
	bob := dial(t, srv, "bob")

	require.Eventually(t, func() bool { return hub.Connected() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(2), observed.Load())

	hub.Notify("alice", 3)

	var msg Message
	alice.SetReadDeadline(time.Now().Add(time.Second))
	require.NoError(t, alice.ReadJSON(&msg))
	assert.Equal(t, uint64(3), msg.Revision)

	bob.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err := bob.ReadMessage()
	assert.Error(t, err, "bob's session did not change")
}

func TestClientDisconnectUnregisters(t *testing.T) {
	var observed atomic.Int64
	hub, srv := startHub(t, WithConnectionObserver(func(delta int64) { observed.Add(delta) }))

	conn := dial(t, srv, "s1")
	require.Eventually(t, func() bool { return hub.Connected() == 1 }, time.Second, 5*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Connected() == 0 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(0), observed.Load())
}

func TestNotifyAfterStopDoesNotBlock(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Notify("s", uint64(i))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked after the hub stopped")
	}
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"http://localhost:8080"})

	tests := []struct {
		name   string
		origin string
		host   string
		want   bool
	}{
		{"no origin", "", "example.com", true},
		{"same host", "https://example.com", "example.com", true},
		{"allowed origin", "http://localhost:8080", "example.com", true},
		{"foreign origin", "http://evil.com", "example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/ws", nil)
			r.Host = tt.host
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, check(r))
		})
	}
}
