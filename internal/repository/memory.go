package repository

import (
	"sync"

	"github.com/nqh2610/lophoconline-sub002/internal/domain"
)

type InMemoryRegistry struct {
	mu    sync.RWMutex
	rooms map[string]*domain.Room
}

func NewInMemoryRegistry() *InMemoryRegistry {
	return &InMemoryRegistry{
		rooms: make(map[string]*domain.Room),
	}
}

func (r *InMemoryRegistry) GetOrCreate(roomID string) *domain.Room {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		room = domain.NewRoom(roomID)
		r.rooms[roomID] = room
	}
	return room
}

func (r *InMemoryRegistry) Get(roomID string) (*domain.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[roomID]
	return room, ok
}

// RemoveIfEmpty deletes the room entry when its peer set is empty.
// Idempotent: a missing room is a no-op.
func (r *InMemoryRegistry) RemoveIfEmpty(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return
	}

	room.Mutex.RLock()
	empty := len(room.Peers) == 0
	room.Mutex.RUnlock()

	if empty {
		delete(r.rooms, roomID)
	}
}

func (r *InMemoryRegistry) Rooms() []*domain.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		result = append(result, room)
	}
	return result
}

// Reset drops every room and returns how many were cleared. Intended for
// the admin surface in test environments only.
func (r *InMemoryRegistry) Reset() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.rooms)
	r.rooms = make(map[string]*domain.Room)
	return n
}
