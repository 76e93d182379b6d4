package transport

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nqh2610/lophoconline-sub002/internal/domain"
)

const defaultEventBuffer = 16

// Hub tracks every open push connection, indexed by room. A peer may hold
// more than one connection at a time (e.g. across a page reload), which is
// why connections get their own composite id instead of being keyed by peer.
//
// Dropping a connection never touches the room registry: only an explicit
// leave, join-time eviction or the sweeper remove a peer record.
type Hub struct {
	log       *slog.Logger
	heartbeat time.Duration
	buffer    int

	mu    sync.RWMutex
	rooms map[string]map[string]*Connection
}

func NewHub(log *slog.Logger, heartbeat time.Duration, buffer int) *Hub {
	if log == nil {
		log = slog.Default()
	}
	if heartbeat <= 0 {
		heartbeat = 25 * time.Second
	}
	if buffer <= 0 {
		buffer = defaultEventBuffer
	}
	return &Hub{
		log:       log,
		heartbeat: heartbeat,
		buffer:    buffer,
		rooms:     make(map[string]map[string]*Connection),
	}
}

// Connection is one open push channel to a client.
type Connection struct {
	id        string
	roomID    string
	peerID    string
	createdAt time.Time
	events    chan domain.Event
	done      chan struct{}
	closeOnce sync.Once
}

func (c *Connection) PeerID() string { return c.peerID }
func (c *Connection) RoomID() string { return c.roomID }

// Events exposes the pending event feed. Consumed by the serving loops and
// by alternative transports built on top of the hub.
func (c *Connection) Events() <-chan domain.Event { return c.events }

// Done is closed when the hub shuts the connection down.
func (c *Connection) Done() <-chan struct{} { return c.done }

func (c *Connection) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *Connection) enqueue(event domain.Event) bool {
	select {
	case c.events <- event:
		return true
	default:
		return false
	}
}

// Register creates a push connection and queues its connected event.
// The event is enqueued under the hub lock, so no unicast or broadcast can
// slot in ahead of it: clients may rely on observing connected before any
// peer-joined.
func (h *Hub) Register(roomID, peerID string) *Connection {
	now := time.Now().UTC()
	conn := &Connection{
		id:        fmt.Sprintf("%s/%d/%s", peerID, now.UnixNano(), uuid.NewString()[:8]),
		roomID:    roomID,
		peerID:    peerID,
		createdAt: now,
		events:    make(chan domain.Event, h.buffer),
		done:      make(chan struct{}),
	}

	h.mu.Lock()
	room, ok := h.rooms[roomID]
	if !ok {
		room = make(map[string]*Connection)
		h.rooms[roomID] = room
	}
	room[conn.id] = conn
	conn.events <- domain.Event{
		Name:    domain.EventConnected,
		Payload: domain.ConnectedPayload{PeerID: peerID},
	}
	h.mu.Unlock()

	h.log.Debug("push connection opened",
		slog.String("room_id", roomID),
		slog.String("peer_id", peerID),
		slog.String("conn_id", conn.id),
	)
	return conn
}

func (h *Hub) Unregister(conn *Connection) {
	h.mu.Lock()
	if room, ok := h.rooms[conn.roomID]; ok {
		delete(room, conn.id)
		if len(room) == 0 {
			delete(h.rooms, conn.roomID)
		}
	}
	h.mu.Unlock()

	conn.close()
	h.log.Debug("push connection closed",
		slog.String("room_id", conn.roomID),
		slog.String("peer_id", conn.peerID),
		slog.String("conn_id", conn.id),
	)
}

func (h *Hub) Unicast(roomID, targetPeerID string, event domain.Event) bool {
	h.mu.RLock()
	var targets []*Connection
	for _, conn := range h.rooms[roomID] {
		if conn.peerID == targetPeerID {
			targets = append(targets, conn)
		}
	}
	h.mu.RUnlock()

	for _, conn := range targets {
		if !conn.enqueue(event) {
			h.log.Debug("dropping event on full channel",
				slog.String("peer_id", conn.peerID),
				slog.String("event", event.Name),
			)
		}
	}
	return len(targets) > 0
}

func (h *Hub) Broadcast(roomID, excludePeerID string, event domain.Event) {
	h.mu.RLock()
	conns := make([]*Connection, 0, len(h.rooms[roomID]))
	for _, conn := range h.rooms[roomID] {
		if conn.peerID == excludePeerID {
			continue
		}
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		if !conn.enqueue(event) {
			h.log.Debug("dropping event on full channel",
				slog.String("peer_id", conn.peerID),
				slog.String("event", event.Name),
			)
		}
	}
}

// ConnectionCount reports open connections in a room. Used by tests and the
// admin dump.
func (h *Hub) ConnectionCount(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// CloseAll tears down every connection; called on process shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	conns := make([]*Connection, 0)
	for _, room := range h.rooms {
		for _, conn := range room {
			conns = append(conns, conn)
		}
	}
	h.rooms = make(map[string]map[string]*Connection)
	h.mu.Unlock()

	for _, conn := range conns {
		conn.close()
	}
}
