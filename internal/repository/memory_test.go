package repository

import (
	"testing"

	"github.com/nqh2610/lophoconline-sub002/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateReturnsSameRoom(t *testing.T) {
	reg := NewInMemoryRegistry()

	room := reg.GetOrCreate("r1")
	require.NotNil(t, room)
	assert.Equal(t, "r1", room.ID)

	again := reg.GetOrCreate("r1")
	assert.Same(t, room, again)
}

func TestGetMissingRoom(t *testing.T) {
	reg := NewInMemoryRegistry()

	room, ok := reg.Get("nope")
	assert.False(t, ok)
	assert.Nil(t, room)
}

func TestRemoveIfEmpty(t *testing.T) {
	reg := NewInMemoryRegistry()

	// Missing room is a no-op.
	reg.RemoveIfEmpty("nope")

	room := reg.GetOrCreate("r1")
	room.Mutex.Lock()
	room.Peers["p1"] = domain.NewPeer("p1", 7, "Tutor", "tutor")
	room.Mutex.Unlock()

	reg.RemoveIfEmpty("r1")
	_, ok := reg.Get("r1")
	assert.True(t, ok, "non-empty room must survive")

	room.Mutex.Lock()
	delete(room.Peers, "p1")
	room.Mutex.Unlock()

	reg.RemoveIfEmpty("r1")
	_, ok = reg.Get("r1")
	assert.False(t, ok)

	// Idempotent.
	reg.RemoveIfEmpty("r1")
}

func TestReset(t *testing.T) {
	reg := NewInMemoryRegistry()
	reg.GetOrCreate("a")
	reg.GetOrCreate("b")

	assert.Equal(t, 2, reg.Reset())
	assert.Empty(t, reg.Rooms())
	assert.Equal(t, 0, reg.Reset())
}
