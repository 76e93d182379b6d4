package service

import (
	"context"
	"testing"
	"time"

	"github.com/nqh2610/lophoconline-sub002/internal/domain"
	"github.com/nqh2610/lophoconline-sub002/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepEvictsInactivePeers(t *testing.T) {
	registry := repository.NewInMemoryRegistry()
	recorder := newRecorder()
	svc := NewSignalingService(registry, recorder, nil, 30*time.Second)
	sweeper := NewSweeper(registry, recorder, nil, time.Minute, 90*time.Second)
	ctx := context.Background()

	_, err := svc.Join(ctx, JoinRequest{RoomID: "r1", PeerID: "p1", UserID: 1, UserName: "A"})
	require.NoError(t, err)
	_, err = svc.Join(ctx, JoinRequest{RoomID: "r1", PeerID: "p2", UserID: 2, UserName: "B"})
	require.NoError(t, err)

	room, _ := registry.Get("r1")
	room.Mutex.Lock()
	room.Peers["p1"].LastActivity = time.Now().UTC().Add(-2 * time.Minute)
	room.Mutex.Unlock()

	sweeper.Sweep()

	assert.Equal(t, 1, room.Len())
	left := recorder.byName(domain.EventPeerLeft)
	require.Len(t, left, 1)
	assert.Equal(t, domain.PeerLeftPayload{PeerID: "p1"}, left[0].Event.Payload)
	assert.Equal(t, "p1", left[0].Exclude)

	_, ok := registry.Get("r1")
	assert.True(t, ok, "room with a live peer survives")
}

func TestSweepReclaimsEmptiedRooms(t *testing.T) {
	registry := repository.NewInMemoryRegistry()
	recorder := newRecorder()
	svc := NewSignalingService(registry, recorder, nil, 30*time.Second)
	sweeper := NewSweeper(registry, recorder, nil, time.Minute, 90*time.Second)
	ctx := context.Background()

	_, err := svc.Join(ctx, JoinRequest{RoomID: "r1", PeerID: "p1", UserID: 1, UserName: "A"})
	require.NoError(t, err)

	room, _ := registry.Get("r1")
	room.Mutex.Lock()
	room.Peers["p1"].LastActivity = time.Now().UTC().Add(-2 * time.Minute)
	room.Mutex.Unlock()

	sweeper.Sweep()

	_, ok := registry.Get("r1")
	assert.False(t, ok)
}

func TestSweepLeavesActivePeersAlone(t *testing.T) {
	registry := repository.NewInMemoryRegistry()
	recorder := newRecorder()
	svc := NewSignalingService(registry, recorder, nil, 30*time.Second)
	sweeper := NewSweeper(registry, recorder, nil, time.Minute, 90*time.Second)
	ctx := context.Background()

	_, err := svc.Join(ctx, JoinRequest{RoomID: "r1", PeerID: "p1", UserID: 1, UserName: "A"})
	require.NoError(t, err)

	sweeper.Sweep()

	room, ok := registry.Get("r1")
	require.True(t, ok)
	assert.Equal(t, 1, room.Len())
	assert.Empty(t, recorder.byName(domain.EventPeerLeft))
}

func TestSweeperRunStopsOnCancel(t *testing.T) {
	registry := repository.NewInMemoryRegistry()
	sweeper := NewSweeper(registry, newRecorder(), nil, 10*time.Millisecond, 90*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		sweeper.Run(ctx)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on context cancellation")
	}
}
