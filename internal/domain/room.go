package domain

import (
	"sort"
	"sync"
	"time"
)

// Room holds the signaling state for one tutor/student pair. It is never
// created explicitly: the registry materializes it on first join and the
// sweeper tears it down once the peer set is empty.
type Room struct {
	Mutex     sync.RWMutex
	ID        string
	Peers     map[string]*Peer
	CreatedAt time.Time
}

func NewRoom(id string) *Room {
	return &Room{
		ID:        id,
		Peers:     make(map[string]*Peer),
		CreatedAt: time.Now().UTC(),
	}
}

// PeersInOrder returns the peers sorted by join time (ties broken by id).
// Initiator election depends on the first entry being the oldest peer.
// Callers must hold Mutex.
func (r *Room) PeersInOrder() []*Peer {
	peers := make([]*Peer, 0, len(r.Peers))
	for _, p := range r.Peers {
		peers = append(peers, p)
	}
	sort.Slice(peers, func(i, j int) bool {
		if peers[i].JoinedAt.Equal(peers[j].JoinedAt) {
			return peers[i].ID < peers[j].ID
		}
		return peers[i].JoinedAt.Before(peers[j].JoinedAt)
	})
	return peers
}

// SnapshotPeers is PeersInOrder with locking for callers outside a
// transaction.
func (r *Room) SnapshotPeers() []*Peer {
	r.Mutex.RLock()
	defer r.Mutex.RUnlock()
	return r.PeersInOrder()
}

func (r *Room) Len() int {
	r.Mutex.RLock()
	defer r.Mutex.RUnlock()
	return len(r.Peers)
}
