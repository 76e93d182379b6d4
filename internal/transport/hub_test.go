package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nqh2610/lophoconline-sub002/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub() *Hub {
	return NewHub(nil, time.Hour, 16)
}

func readEvent(t *testing.T, conn *Connection) domain.Event {
	t.Helper()
	select {
	case ev := <-conn.Events():
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return domain.Event{}
	}
}

func TestConnectedEventIsDeliveredFirst(t *testing.T) {
	hub := newTestHub()

	conn := hub.Register("r1", "p1")
	hub.Broadcast("r1", "", domain.Event{Name: domain.EventOffer})

	first := readEvent(t, conn)
	require.Equal(t, domain.EventConnected, first.Name)
	assert.Equal(t, domain.ConnectedPayload{PeerID: "p1"}, first.Payload)

	second := readEvent(t, conn)
	assert.Equal(t, domain.EventOffer, second.Name)
}

func TestUnicastReportsDelivery(t *testing.T) {
	hub := newTestHub()
	hub.Register("r1", "p1")

	assert.True(t, hub.Unicast("r1", "p1", domain.Event{Name: domain.EventOffer}))
	assert.False(t, hub.Unicast("r1", "ghost", domain.Event{Name: domain.EventOffer}))
	assert.False(t, hub.Unicast("empty-room", "p1", domain.Event{Name: domain.EventOffer}))
}

func TestUnicastIsolation(t *testing.T) {
	hub := newTestHub()
	x := hub.Register("r1", "px")
	y := hub.Register("r1", "py")

	readEvent(t, x) // connected
	readEvent(t, y)

	require.True(t, hub.Unicast("r1", "px", domain.Event{Name: domain.EventOffer}))

	assert.Equal(t, domain.EventOffer, readEvent(t, x).Name)
	select {
	case ev := <-y.Events():
		t.Fatalf("unexpected event for py: %s", ev.Name)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcastExcludesPeer(t *testing.T) {
	hub := newTestHub()
	sender := hub.Register("r1", "p1")
	other := hub.Register("r1", "p2")

	readEvent(t, sender)
	readEvent(t, other)

	hub.Broadcast("r1", "p1", domain.Event{Name: domain.EventICECandidate})

	assert.Equal(t, domain.EventICECandidate, readEvent(t, other).Name)
	select {
	case ev := <-sender.Events():
		t.Fatalf("sender got its own broadcast: %s", ev.Name)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPeerMayHoldMultipleConnections(t *testing.T) {
	hub := newTestHub()
	first := hub.Register("r1", "p1")
	second := hub.Register("r1", "p1")

	readEvent(t, first)
	readEvent(t, second)
	assert.Equal(t, 2, hub.ConnectionCount("r1"))

	require.True(t, hub.Unicast("r1", "p1", domain.Event{Name: domain.EventAnswer}))
	assert.Equal(t, domain.EventAnswer, readEvent(t, first).Name)
	assert.Equal(t, domain.EventAnswer, readEvent(t, second).Name)
}

func TestUnregisterRemovesConnection(t *testing.T) {
	hub := newTestHub()
	conn := hub.Register("r1", "p1")

	hub.Unregister(conn)
	assert.Equal(t, 0, hub.ConnectionCount("r1"))
	assert.False(t, hub.Unicast("r1", "p1", domain.Event{Name: domain.EventOffer}))

	select {
	case <-conn.Done():
	default:
		t.Fatal("done channel not closed")
	}

	// Double unregister is harmless.
	hub.Unregister(conn)
}

func TestServeSSEStreamsEvents(t *testing.T) {
	hub := newTestHub()
	conn := hub.Register("r1", "p1")
	hub.Broadcast("r1", "", domain.Event{
		Name:    domain.EventPeerJoined,
		Payload: domain.PeerJoinedPayload{PeerID: "p2", ShouldInitiate: true},
	})

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/events?roomId=r1&peerId=p1", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		hub.ServeSSE(rec, req, conn)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "no", rec.Header().Get("X-Accel-Buffering"))

	connectedAt := strings.Index(body, "event:connected")
	joinedAt := strings.Index(body, "event:peer-joined")
	require.GreaterOrEqual(t, connectedAt, 0, "body: %s", body)
	require.GreaterOrEqual(t, joinedAt, 0, "body: %s", body)
	assert.Less(t, connectedAt, joinedAt, "connected must precede peer-joined")
	assert.Contains(t, body, `"shouldInitiate":true`)

	assert.Equal(t, 0, hub.ConnectionCount("r1"), "serve loop must unregister on exit")
}

func TestServeSSEHeartbeat(t *testing.T) {
	hub := NewHub(nil, 10*time.Millisecond, 16)
	conn := hub.Register("r1", "p1")

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		hub.ServeSSE(rec, req, conn)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	assert.Contains(t, rec.Body.String(), ": keepalive")
}

func TestCloseAllStopsServing(t *testing.T) {
	hub := newTestHub()
	conn := hub.Register("r1", "p1")

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		hub.ServeSSE(rec, req, conn)
	}()

	hub.CloseAll()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("serve loop did not stop after CloseAll")
	}
	assert.Equal(t, 0, hub.ConnectionCount("r1"))
}

func TestServeWebSocket(t *testing.T) {
	hub := newTestHub()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn := hub.Register("r1", "p1")
		hub.ServeWebSocket(ws, conn)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer client.Close()

	var first domain.Event
	require.NoError(t, client.ReadJSON(&first))
	assert.Equal(t, domain.EventConnected, first.Name)

	require.Eventually(t, func() bool {
		return hub.ConnectionCount("r1") == 1
	}, time.Second, 10*time.Millisecond)

	hub.Broadcast("r1", "", domain.Event{
		Name:    domain.EventRefresh,
		Payload: domain.RefreshPayload{FromPeerID: "p2", Reason: "reload"},
	})

	var second domain.Event
	require.NoError(t, client.ReadJSON(&second))
	assert.Equal(t, domain.EventRefresh, second.Name)

	client.Close()
	require.Eventually(t, func() bool {
		return hub.ConnectionCount("r1") == 0
	}, time.Second, 10*time.Millisecond)
}
