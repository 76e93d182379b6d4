package transport

import "github.com/nqh2610/lophoconline-sub002/internal/domain"

// Notifier is the delivery surface the signaling layer depends on. It stays
// oblivious to which channel type (SSE stream or websocket) a peer opened.
type Notifier interface {
	// Unicast delivers the event to every open connection of the target
	// peer and reports whether at least one was found. "not found" is a
	// soft failure: the target may have a connection in flight.
	Unicast(roomID, targetPeerID string, event domain.Event) bool

	// Broadcast delivers the event to every connection in the room except
	// those belonging to excludePeerID.
	Broadcast(roomID, excludePeerID string, event domain.Event)
}
