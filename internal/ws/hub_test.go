package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func dial(t *testing.T, srv *httptest.Server, session string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?session=" + session
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestPublishReachesOnlyThatSession(t *testing.T) {
	hub := NewHub("*", nil)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWs(w, r, r.URL.Query().Get("session"))
	}))

	mine := dial(t, srv, "s1")
	other := dial(t, srv, "s2")
	require.Eventually(t, func() bool { return hub.Clients("s1") == 1 && hub.Clients("s2") == 1 }, time.Second, 5*time.Millisecond)

	hub.Publish("s1", "session_invalidated", map[string]string{"redirect": "/sign-in"})

	var ev struct {
		Type string            `json:"type"`
		Data map[string]string `json:"data"`
	}
	require.NoError(t, mine.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, mine.ReadJSON(&ev))
	assert.Equal(t, "session_invalidated", ev.Type)
	assert.Equal(t, "/sign-in", ev.Data["redirect"])

	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := other.ReadMessage()
	assert.Error(t, err, "other sessions receive nothing")

	cancel()
	<-stopped
	hub.Publish("s1", "late", nil)

	mine.Close()
	other.Close()
	srv.Close()
	require.Eventually(t, func() bool { return hub.Clients("s1") == 0 }, time.Second, 5*time.Millisecond)
}

func TestOriginCheck(t *testing.T) {
	hub := NewHub("https://console.example.com", nil)
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)

	req.Header.Set("Origin", "https://console.example.com")
	assert.True(t, hub.upgrader.CheckOrigin(req))

	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, hub.upgrader.CheckOrigin(req))
}
